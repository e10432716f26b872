// Package probe fetches a resource once and scores its body against an
// ordered checklist of textual markers.
package probe

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultTimeout   = 5 * time.Second
	DefaultThreshold = 0.7
)

type Prober struct {
	fetcher Fetcher
	timeout time.Duration
}

type Option func(*Prober)

func WithFetcher(f Fetcher) Option {
	return func(p *Prober) {
		p.fetcher = f
	}
}

func WithDefaultTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewProber(opts ...Option) *Prober {
	p := &Prober{
		fetcher: NewSchemeFetcher(DefaultMaxBodySize),
		timeout: DefaultTimeout,
	}

	for _, o := range opts {
		o(p)
	}

	return p
}

var defaultProber = NewProber()

// Evaluate runs target against checklist using the default prober.
func Evaluate(ctx context.Context, target Target, checklist Checklist, threshold float64) *Result {
	return defaultProber.Evaluate(ctx, target, checklist, threshold)
}

// Evaluate fetches target exactly once and tests every marker of checklist
// against the body. It never returns an error: fetch failures, bad status
// codes and invalid input are recorded in the result.
func (p *Prober) Evaluate(ctx context.Context, target Target, checklist Checklist, threshold float64) *Result {
	res := newResult(target, checklist, threshold)
	logger := log.WithFields(log.Fields{"kind": "probe", "name": target.Name, "url": target.URL})

	matchers, err := validate(target, checklist, threshold)
	if err != nil {
		logger.WithError(err).Warn("probe not executed")
		return res.fail(err)
	}

	if target.Timeout <= 0 {
		target.Timeout = p.timeout
	}

	fetchCtx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.fetcher.Fetch(fetchCtx, target)
	res.Duration = time.Since(start)

	if resp != nil {
		res.StatusCode = resp.StatusCode
		res.ContentType = resp.ContentType
	}

	if err == nil {
		err = checkContentType(target, resp)
	}

	if err != nil {
		logger.WithError(err).WithField("failure", classify(err)).Warn("probe could not run")
		return res.fail(err)
	}

	for i, match := range matchers {
		if match(resp.Body) {
			res.Markers[i].Found = true
			res.Found++
		}
	}

	res.Passed = Decide(res.Found, res.Total, threshold)

	logger.WithFields(log.Fields{
		"found":  res.Found,
		"total":  res.Total,
		"passed": res.Passed,
	}).Debug()

	return res
}

func validate(target Target, checklist Checklist, threshold float64) ([]matcher, error) {
	u, err := url.Parse(target.URL)
	if err != nil {
		return nil, &InvalidInputError{Reason: "malformed URL", Err: err}
	}

	if u.Scheme == "" || (u.Host == "" && u.Scheme != "file") {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("URL %q is not absolute", target.URL)}
	}

	if !(threshold > 0 && threshold <= 1) {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("threshold %v is outside (0,1]", threshold)}
	}

	matchers, err := checklist.compile()
	if err != nil {
		return nil, &InvalidInputError{Reason: "bad checklist", Err: err}
	}

	return matchers, nil
}

func checkContentType(target Target, resp *Response) error {
	if target.ExpectContentType == "" {
		return nil
	}

	if !strings.Contains(strings.ToLower(resp.ContentType), strings.ToLower(target.ExpectContentType)) {
		return &ContentTypeError{URL: target.URL, Expected: target.ExpectContentType, Actual: resp.ContentType}
	}
	return nil
}
