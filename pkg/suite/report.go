package suite

import (
	"time"

	"github.com/mittwald/pageprobe/pkg/probe"
)

const (
	ExitOK       = 0
	ExitMismatch = 1
	ExitErrored  = 2
)

type Report struct {
	Suite       string          `json:"suite"`
	Results     []*probe.Result `json:"results"`
	Total       int             `json:"total"`
	Passed      int             `json:"passed"`
	Mismatched  int             `json:"mismatched"`
	Errored     int             `json:"errored"`
	SuccessRate float64         `json:"successRate"`
	Duration    time.Duration   `json:"duration"`
}

func NewReport(name string, results []*probe.Result) *Report {
	r := &Report{
		Suite:   name,
		Results: results,
		Total:   len(results),
	}

	for _, res := range results {
		switch {
		case !res.Ran():
			r.Errored++
		case res.Passed:
			r.Passed++
		default:
			r.Mismatched++
		}
	}

	if r.Total > 0 {
		r.SuccessRate = float64(r.Passed) / float64(r.Total) * 100
	}

	return r
}

func (r *Report) OK() bool {
	return r.Passed == r.Total
}

// ExitCode maps reports to a process exit status: probes that could not run
// take precedence over content mismatches.
func ExitCode(reports ...*Report) int {
	code := ExitOK
	for _, r := range reports {
		if r.Errored > 0 {
			return ExitErrored
		}
		if r.Mismatched > 0 {
			code = ExitMismatch
		}
	}
	return code
}
