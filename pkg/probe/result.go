package probe

import (
	"time"
)

type MarkerResult struct {
	Marker Marker `json:"marker"`
	Found  bool   `json:"found"`
}

// Result is the outcome of a single evaluation. A Result with a non-empty
// Failure means the probe could not run; otherwise Passed tells whether enough
// markers were found.
type Result struct {
	Name        string         `json:"name,omitempty"`
	URL         string         `json:"url"`
	Markers     []MarkerResult `json:"markers"`
	Found       int            `json:"found"`
	Total       int            `json:"total"`
	Threshold   float64        `json:"threshold"`
	Passed      bool           `json:"passed"`
	Failure     FailureKind    `json:"failure,omitempty"`
	Message     string         `json:"message,omitempty"`
	StatusCode  int            `json:"statusCode,omitempty"`
	ContentType string         `json:"contentType,omitempty"`
	Duration    time.Duration  `json:"duration"`

	Err error `json:"-"`
}

// Decide is the pass rule: the share of found markers must reach threshold.
func Decide(found, total int, threshold float64) bool {
	if total <= 0 {
		return false
	}
	return float64(found)/float64(total) >= threshold
}

// Ran reports whether the target was fetched and scanned.
func (r *Result) Ran() bool {
	return r.Failure == FailureNone
}

// Mismatch reports a probe that ran but found too few markers.
func (r *Result) Mismatch() bool {
	return r.Ran() && !r.Passed
}

func (r *Result) Ratio() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Found) / float64(r.Total)
}

func (r *Result) Percent() float64 {
	return r.Ratio() * 100
}

func newResult(target Target, checklist Checklist, threshold float64) *Result {
	res := &Result{
		Name:      target.Name,
		URL:       target.URL,
		Markers:   make([]MarkerResult, len(checklist)),
		Total:     len(checklist),
		Threshold: threshold,
	}

	for i := range checklist {
		res.Markers[i] = MarkerResult{Marker: checklist[i]}
	}

	return res
}

func (r *Result) fail(err error) *Result {
	r.Failure = classify(err)
	r.Err = err
	r.Message = err.Error()
	r.Found = 0
	r.Passed = false
	for i := range r.Markers {
		r.Markers[i].Found = false
	}
	return r
}
