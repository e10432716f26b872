// Package readiness checks that the backends a smoke test relies on are up
// before any content probe is evaluated.
package readiness

type Probe interface {
	Exec() error
}

type Result struct {
	Name    string `json:"-"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type StatusResponse struct {
	Dependencies map[string]*Result `json:"dependencies"`
}
