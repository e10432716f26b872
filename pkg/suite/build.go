// Package suite turns configured suites into probe targets and evaluates
// them.
package suite

import (
	"fmt"
	"time"

	"github.com/mittwald/pageprobe/internal/config"
	"github.com/mittwald/pageprobe/pkg/probe"
	"github.com/pkg/errors"
)

const DefaultConcurrency = 4

type Check struct {
	Target    probe.Target
	Checklist probe.Checklist
	Threshold float64
}

type Suite struct {
	Name        string
	Concurrency int
	Checks      []Check
}

// Build renders every templated value of cfg and applies the suite and
// global defaults. Thresholds are not validated here: an out of range value
// surfaces as an invalid probe result.
func Build(cfg *config.Suite, defaults config.Defaults) (*Suite, error) {
	s := &Suite{
		Name:        cfg.Name,
		Concurrency: firstPositiveInt(cfg.Concurrency, defaults.Concurrency, DefaultConcurrency),
		Checks:      make([]Check, 0, len(cfg.Targets)),
	}

	suiteTimeout, err := parseTimeout(cfg.Timeout, defaults.Timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "suite %q", cfg.Name)
	}

	headers := mergeHeaders(defaults.Headers, cfg.Headers)

	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		name := fmt.Sprintf("%s.%s", cfg.Name, t.Name)

		url, err := config.Render(name+".url", t.URL, cfg.Params)
		if err != nil {
			return nil, err
		}

		timeout := suiteTimeout
		if t.Timeout != "" {
			if timeout, err = time.ParseDuration(t.Timeout); err != nil {
				return nil, errors.Wrapf(err, "target %q has an invalid timeout", name)
			}
		}

		targetHeaders, err := config.RenderMap(name+".headers", mergeHeaders(headers, t.Headers), cfg.Params)
		if err != nil {
			return nil, err
		}

		checklist := make(probe.Checklist, 0, len(t.Markers))
		for _, m := range t.Markers {
			pattern, err := config.Render(name+".marker", m.Pattern, cfg.Params)
			if err != nil {
				return nil, err
			}
			checklist = append(checklist, probe.Marker{Pattern: pattern, Label: m.Label, Regexp: m.Regex})
		}

		s.Checks = append(s.Checks, Check{
			Target: probe.Target{
				Name:              t.Name,
				URL:               url,
				Timeout:           timeout,
				Headers:           targetHeaders,
				ExpectContentType: t.ContentType,
			},
			Checklist: checklist,
			Threshold: firstNonZero(t.Threshold, cfg.Threshold, defaults.Threshold, probe.DefaultThreshold),
		})
	}

	return s, nil
}

// BuildAll builds the named suites, or every suite when names is empty.
func BuildAll(cfg *config.Config, names ...string) ([]*Suite, error) {
	if len(names) == 0 {
		names = cfg.SuiteNames()
	}

	suites := make([]*Suite, 0, len(names))
	for _, name := range names {
		sc, ok := cfg.Suite(name)
		if !ok {
			return nil, fmt.Errorf("suite %q is not configured", name)
		}

		s, err := Build(sc, cfg.DefaultsOrEmpty())
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}

	return suites, nil
}

func parseTimeout(values ...string) (time.Duration, error) {
	for _, v := range values {
		if v == "" {
			continue
		}
		return time.ParseDuration(v)
	}
	return probe.DefaultTimeout, nil
}

func mergeHeaders(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}

	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func firstPositiveInt(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
