package probe

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker is a textual hint expected somewhere in a fetched body.
type Marker struct {
	Pattern string `json:"pattern"`
	Label   string `json:"label"`
	Regexp  bool   `json:"regexp,omitempty"`
}

// Checklist is an ordered list of markers. Order is kept in every result.
type Checklist []Marker

type matcher func(body string) bool

func (m Marker) String() string {
	if m.Label == "" {
		return m.Pattern
	}
	return fmt.Sprintf("%s (%s)", m.Label, m.Pattern)
}

func (m Marker) compile() (matcher, error) {
	if m.Pattern == "" {
		return nil, fmt.Errorf("marker %q has an empty pattern", m.Label)
	}

	if !m.Regexp {
		pattern := m.Pattern
		return func(body string) bool {
			return strings.Contains(body, pattern)
		}, nil
	}

	re, err := regexp.Compile(m.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid marker regexp %q: %w", m.Pattern, err)
	}

	return re.MatchString, nil
}

func (c Checklist) compile() ([]matcher, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("checklist is empty")
	}

	matchers := make([]matcher, len(c))
	for i := range c {
		m, err := c[i].compile()
		if err != nil {
			return nil, err
		}
		matchers[i] = m
	}

	return matchers, nil
}
