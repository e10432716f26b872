package probe

import (
	"context"
	"mime"
	"net/url"
	"os"
	"path/filepath"
)

// FileFetcher reads a local file given as file:// URL.
type FileFetcher struct {
	MaxBodySize int64
}

func (f *FileFetcher) Fetch(ctx context.Context, target Target) (*Response, error) {
	u, err := url.Parse(target.URL)
	if err != nil {
		return nil, &InvalidInputError{Reason: "cannot parse file URL", Err: err}
	}

	path := u.Path
	if u.Host != "" && u.Host != "localhost" {
		path = u.Host + u.Path
	}

	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: target.URL, Err: err}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &FetchError{URL: target.URL, Err: err}
	}
	defer file.Close()

	body, err := readLimited(file, f.MaxBodySize)
	if err != nil {
		return nil, &FetchError{URL: target.URL, Err: err}
	}

	return &Response{
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Body:        string(body),
	}, nil
}
