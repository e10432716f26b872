package probe

import (
	"errors"
	"fmt"
	"net"
)

// FailureKind tells why a probe could not run. It is empty when the probe
// fetched the target and scanned the body, whatever the number of markers found.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureFetch       FailureKind = "fetch"
	FailureHTTPStatus  FailureKind = "http_status"
	FailureInvalid     FailureKind = "invalid"
	FailureContentType FailureKind = "content_type"
)

// ErrBodyTooLarge is wrapped in a FetchError when a body exceeds the size
// limit. Matching a truncated body would hide markers past the cut.
var ErrBodyTooLarge = errors.New("body exceeds size limit")

// FetchError is returned by fetchers when the target could not be reached at
// all: refused connections, DNS failures, timeouts, missing files.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %q: %s", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying error was a timeout.
func (e *FetchError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// HTTPStatusError is returned when the target answered with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%q returned status %q", e.URL, e.Status)
}

// ContentTypeError is returned when the target answered with a content type
// other than the expected one.
type ContentTypeError struct {
	URL      string
	Expected string
	Actual   string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("%q returned content type %q, expected %q", e.URL, e.Actual, e.Expected)
}

// InvalidInputError describes a target, checklist or threshold that was
// rejected before any fetch happened.
type InvalidInputError struct {
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	if e.Err == nil {
		return "invalid probe input: " + e.Reason
	}
	return fmt.Sprintf("invalid probe input: %s: %s", e.Reason, e.Err)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

func classify(err error) FailureKind {
	var statusErr *HTTPStatusError
	var invalidErr *InvalidInputError
	var contentTypeErr *ContentTypeError

	switch {
	case err == nil:
		return FailureNone
	case errors.As(err, &statusErr):
		return FailureHTTPStatus
	case errors.As(err, &invalidErr):
		return FailureInvalid
	case errors.As(err, &contentTypeErr):
		return FailureContentType
	default:
		return FailureFetch
	}
}
