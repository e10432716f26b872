package probe

import (
	"context"
	"io"
	"net/http"
)

// HTTPFetcher issues a single GET request. Non-2xx answers are returned as
// HTTPStatusError and their body is dropped.
type HTTPFetcher struct {
	MaxBodySize int64
	Transport   http.RoundTripper
}

func (h *HTTPFetcher) Fetch(ctx context.Context, target Target) (*Response, error) {
	client := &http.Client{
		Timeout:   target.Timeout,
		Transport: h.Transport,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return nil, &InvalidInputError{Reason: "cannot build request", Err: err}
	}

	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target.URL, Err: err}
	}
	defer res.Body.Close()

	resp := &Response{
		StatusCode:  res.StatusCode,
		ContentType: res.Header.Get("Content-Type"),
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, limitOrDefault(h.MaxBodySize)))
		return resp, &HTTPStatusError{URL: target.URL, StatusCode: res.StatusCode, Status: res.Status}
	}

	body, err := readLimited(res.Body, h.MaxBodySize)
	if err != nil {
		return resp, &FetchError{URL: target.URL, Err: err}
	}

	resp.Body = string(body)
	return resp, nil
}
