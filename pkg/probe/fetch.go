package probe

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

const DefaultMaxBodySize int64 = 10 << 20

// Target is what a probe fetches. Timeout falls back to the prober default
// when zero. ExpectContentType, when set, must be contained in the content
// type of the response.
type Target struct {
	Name              string
	URL               string
	Timeout           time.Duration
	Headers           map[string]string
	ExpectContentType string
}

// Response is the part of a fetched resource the markers are matched against.
type Response struct {
	StatusCode  int
	ContentType string
	Body        string
}

type Fetcher interface {
	Fetch(ctx context.Context, target Target) (*Response, error)
}

type FetcherFunc func(ctx context.Context, target Target) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, target Target) (*Response, error) {
	return f(ctx, target)
}

// SchemeFetcher dispatches on the URL scheme of the target.
type SchemeFetcher map[string]Fetcher

// NewSchemeFetcher returns a fetcher for http(s), ws(s) and file URLs.
func NewSchemeFetcher(maxBodySize int64) SchemeFetcher {
	httpFetcher := &HTTPFetcher{MaxBodySize: maxBodySize}
	wsFetcher := &WebsocketFetcher{MaxBodySize: maxBodySize}

	return SchemeFetcher{
		"http":  httpFetcher,
		"https": httpFetcher,
		"ws":    wsFetcher,
		"wss":   wsFetcher,
		"file":  &FileFetcher{MaxBodySize: maxBodySize},
	}
}

func (s SchemeFetcher) Fetch(ctx context.Context, target Target) (*Response, error) {
	u, err := url.Parse(target.URL)
	if err != nil {
		return nil, &InvalidInputError{Reason: "malformed URL", Err: err}
	}

	f, ok := s[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}

	return f.Fetch(ctx, target)
}

func deadline(ctx context.Context, timeout time.Duration) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	if timeout > 0 {
		return time.Now().Add(timeout)
	}
	return time.Time{}
}

func limitOrDefault(limit int64) int64 {
	if limit <= 0 {
		return DefaultMaxBodySize
	}
	return limit
}

// readLimited reads r completely but fails with ErrBodyTooLarge instead of
// returning more than limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	limit = limitOrDefault(limit)

	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}
