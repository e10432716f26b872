package probe_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/gorilla/websocket"
	"github.com/mittwald/pageprobe/pkg/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orangeChecklist = probe.Checklist{
	{Pattern: "orange-500", Label: "Couleur orange"},
	{Pattern: "dropdown", Label: "Menu déroulant"},
}

func serveBody(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEvaluateAllMarkersFound(t *testing.T) {
	srv := serveBody(t, "<div class='orange-500 dropdown'>")

	res := probe.Evaluate(context.Background(), probe.Target{URL: srv.URL}, orangeChecklist, 0.7)

	assert.True(t, res.Ran())
	assert.Equal(t, 2, res.Found)
	assert.Equal(t, 2, res.Total)
	assert.True(t, res.Passed)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 100.0, res.Percent())
}

func TestEvaluateNoMarkersFound(t *testing.T) {
	srv := serveBody(t, "<div class='blue-700'>")

	res := probe.Evaluate(context.Background(), probe.Target{URL: srv.URL}, orangeChecklist, 0.7)

	assert.True(t, res.Ran())
	assert.False(t, res.Passed)
	assert.True(t, res.Mismatch())
	assert.Equal(t, 0, res.Found)
	for _, m := range res.Markers {
		assert.False(t, m.Found, m.Marker.Label)
	}
}

func TestEvaluateReportsExactlyTheMarkersPresent(t *testing.T) {
	checklist := probe.Checklist{
		{Pattern: "bg-orange-500", Label: "fond"},
		{Pattern: "rounded-xl", Label: "coins"},
		{Pattern: "shadow-lg", Label: "ombre"},
		{Pattern: "navbar", Label: "navigation"},
		{Pattern: "footer", Label: "pied de page"},
	}

	for mask := 0; mask < 1<<len(checklist); mask++ {
		var parts []string
		want := make([]bool, len(checklist))
		k := 0
		for i := range checklist {
			if mask&(1<<i) != 0 {
				parts = append(parts, checklist[i].Pattern)
				want[i] = true
				k++
			}
		}

		body := "<main class='" + strings.Join(parts, " ") + "'></main>"
		fetcher := probe.FetcherFunc(func(ctx context.Context, target probe.Target) (*probe.Response, error) {
			return &probe.Response{StatusCode: http.StatusOK, Body: body}, nil
		})
		prober := probe.NewProber(probe.WithFetcher(fetcher))

		res := prober.Evaluate(context.Background(), probe.Target{URL: "http://frontend.local/"}, checklist, 0.6)

		require.Equal(t, k, res.Found, "mask %b", mask)
		for i := range checklist {
			assert.Equal(t, want[i], res.Markers[i].Found, "mask %b marker %d", mask, i)
			assert.Equal(t, checklist[i], res.Markers[i].Marker, "order must be kept")
		}
		assert.Equal(t, probe.Decide(k, len(checklist), 0.6), res.Passed)
	}
}

func TestDecide(t *testing.T) {
	for total := 1; total <= 10; total++ {
		for found := 0; found <= total; found++ {
			for _, threshold := range []float64{0.01, 0.25, 0.5, 0.6, 0.7, 0.8, 0.99, 1} {
				want := float64(found)/float64(total) >= threshold
				assert.Equal(t, want, probe.Decide(found, total, threshold), "%d/%d @ %v", found, total, threshold)
			}
		}
	}

	assert.True(t, probe.Decide(7, 10, 0.7))
	assert.False(t, probe.Decide(0, 0, 0.5))
}

func TestEvaluateEmptyBody(t *testing.T) {
	srv := serveBody(t, "")

	for _, threshold := range []float64{0.01, 0.5, 1} {
		res := probe.Evaluate(context.Background(), probe.Target{URL: srv.URL}, orangeChecklist, threshold)
		assert.True(t, res.Ran())
		assert.Equal(t, 0, res.Found)
		assert.False(t, res.Passed)
	}
}

func TestEvaluateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := probe.Evaluate(context.Background(), probe.Target{URL: url, Timeout: time.Second}, orangeChecklist, 0.7)

	assert.False(t, res.Ran())
	assert.False(t, res.Mismatch())
	assert.Equal(t, probe.FailureFetch, res.Failure)
	assert.Equal(t, 0, res.Found)
	assert.False(t, res.Passed)
	assert.NotEmpty(t, res.Message)

	var fetchErr *probe.FetchError
	assert.True(t, errors.As(res.Err, &fetchErr))
}

func TestEvaluateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
		_, _ = fmt.Fprint(w, "orange-500 dropdown")
	}))
	defer srv.Close()

	res := probe.Evaluate(context.Background(), probe.Target{URL: srv.URL, Timeout: 50 * time.Millisecond}, orangeChecklist, 0.7)

	require.Equal(t, probe.FailureFetch, res.Failure)
	var fetchErr *probe.FetchError
	require.True(t, errors.As(res.Err, &fetchErr))
	assert.True(t, fetchErr.Timeout())
}

func TestEvaluateNonSuccessStatusSkipsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprint(w, "orange-500 dropdown")
	}))
	defer srv.Close()

	res := probe.Evaluate(context.Background(), probe.Target{URL: srv.URL}, orangeChecklist, 0.5)

	assert.Equal(t, probe.FailureHTTPStatus, res.Failure)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, 0, res.Found)
	assert.False(t, res.Passed)
	for _, m := range res.Markers {
		assert.False(t, m.Found)
	}

	var statusErr *probe.HTTPStatusError
	require.True(t, errors.As(res.Err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestEvaluateRejectsInvalidInputWithoutFetching(t *testing.T) {
	var calls int32
	fetcher := probe.FetcherFunc(func(ctx context.Context, target probe.Target) (*probe.Response, error) {
		atomic.AddInt32(&calls, 1)
		return &probe.Response{StatusCode: http.StatusOK, Body: "orange-500"}, nil
	})
	prober := probe.NewProber(probe.WithFetcher(fetcher))

	cases := map[string]struct {
		url       string
		checklist probe.Checklist
		threshold float64
	}{
		"empty checklist":   {"http://frontend.local/", nil, 0.7},
		"zero threshold":    {"http://frontend.local/", orangeChecklist, 0},
		"threshold above 1": {"http://frontend.local/", orangeChecklist, 1.5},
		"relative url":      {"/colis", orangeChecklist, 0.7},
		"malformed url":     {"http://[::1", orangeChecklist, 0.7},
		"bad regexp":        {"http://frontend.local/", probe.Checklist{{Pattern: "bg-(orange", Regexp: true}}, 0.7},
		"empty pattern":     {"http://frontend.local/", probe.Checklist{{Label: "nothing"}}, 0.7},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			res := prober.Evaluate(context.Background(), probe.Target{URL: c.url}, c.checklist, c.threshold)
			assert.Equal(t, probe.FailureInvalid, res.Failure)
			assert.False(t, res.Passed)
			assert.Equal(t, 0, res.Found)
		})
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestEvaluateUnsupportedScheme(t *testing.T) {
	res := probe.Evaluate(context.Background(), probe.Target{URL: "ftp://frontend.local/index.html"}, orangeChecklist, 0.7)

	assert.Equal(t, probe.FailureInvalid, res.Failure)
}

func TestEvaluateFetchesOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = fmt.Fprint(w, "orange-500 dropdown navbar")
	}))
	defer srv.Close()

	checklist := append(probe.Checklist{
		{Pattern: "navbar", Label: "navigation"},
		{Pattern: "footer", Label: "pied de page"},
		{Pattern: `orange-\d+`, Label: "nuance orange", Regexp: true},
	}, orangeChecklist...)

	res := probe.Evaluate(context.Background(), probe.Target{URL: srv.URL}, checklist, 0.8)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, 4, res.Found)
	assert.Equal(t, 5, res.Total)
	assert.True(t, res.Passed)
	assert.False(t, res.Markers[1].Found)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	srv := serveBody(t, "<nav class='dropdown'>")
	target := probe.Target{Name: "home", URL: srv.URL}

	first := probe.Evaluate(context.Background(), target, orangeChecklist, 0.5)
	second := probe.Evaluate(context.Background(), target, orangeChecklist, 0.5)

	if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(probe.Result{}, "Duration")); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
	assert.True(t, first.Passed)
}

func TestEvaluateSendsHeaders(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		_, _ = fmt.Fprint(w, "orange-500")
	}))
	defer srv.Close()

	target := probe.Target{URL: srv.URL, Headers: map[string]string{"User-Agent": "BantuDelice-Test/1.0"}}
	probe.Evaluate(context.Background(), target, orangeChecklist, 0.5)

	assert.Equal(t, "BantuDelice-Test/1.0", agent)
}

func TestEvaluateWebsocketFirstMessage(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"welcome","tracking":"BD123456"}`))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	checklist := probe.Checklist{
		{Pattern: "welcome", Label: "Message de bienvenue"},
		{Pattern: "BD123456", Label: "Numéro de suivi"},
	}

	res := probe.Evaluate(context.Background(), probe.Target{URL: url, Timeout: 2 * time.Second}, checklist, 1)

	require.True(t, res.Ran(), res.Message)
	assert.True(t, res.Passed)
	assert.Equal(t, http.StatusSwitchingProtocols, res.StatusCode)
}

func TestEvaluateWebsocketRejectedHandshake(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	res := probe.Evaluate(context.Background(), probe.Target{URL: url}, orangeChecklist, 0.5)

	assert.Equal(t, probe.FailureHTTPStatus, res.Failure)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestEvaluateLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ColisExpedition.tsx")
	require.NoError(t, os.WriteFile(path, []byte("const PACKAGE_TYPE_CONFIG = {}; const CITY_PRICING = {};"), 0o644))

	checklist := probe.Checklist{
		{Pattern: "PACKAGE_TYPE_CONFIG", Label: "Configuration des types de colis"},
		{Pattern: "CITY_PRICING", Label: "Configuration des tarifs par ville"},
		{Pattern: "calculatePriceByCity", Label: "Fonction de calcul par ville"},
	}

	res := probe.Evaluate(context.Background(), probe.Target{URL: "file://" + path}, checklist, 0.6)
	assert.True(t, res.Ran(), res.Message)
	assert.Equal(t, 2, res.Found)
	assert.True(t, res.Passed)

	missing := probe.Evaluate(context.Background(), probe.Target{URL: "file://" + filepath.Join(dir, "missing.tsx")}, checklist, 0.6)
	assert.Equal(t, probe.FailureFetch, missing.Failure)
}

func TestEvaluateRejectsOversizedBody(t *testing.T) {
	srv := serveBody(t, strings.Repeat("x", 64)+" orange-500 dropdown")

	prober := probe.NewProber(probe.WithFetcher(probe.NewSchemeFetcher(16)))
	res := prober.Evaluate(context.Background(), probe.Target{URL: srv.URL}, orangeChecklist, 0.5)

	assert.Equal(t, probe.FailureFetch, res.Failure)
	assert.False(t, res.Ran())
	assert.Equal(t, 0, res.Found)
	assert.True(t, errors.Is(res.Err, probe.ErrBodyTooLarge))
}

func TestEvaluateBodyAtTheLimitIsScanned(t *testing.T) {
	body := "orange-500 dropdown"
	srv := serveBody(t, body)

	prober := probe.NewProber(probe.WithFetcher(probe.NewSchemeFetcher(int64(len(body)))))
	res := prober.Evaluate(context.Background(), probe.Target{URL: srv.URL}, orangeChecklist, 0.5)

	assert.True(t, res.Ran(), res.Message)
	assert.Equal(t, 2, res.Found)
}

func TestEvaluateRejectsOversizedLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)+"orange-500"), 0o644))

	prober := probe.NewProber(probe.WithFetcher(probe.NewSchemeFetcher(16)))
	res := prober.Evaluate(context.Background(), probe.Target{URL: "file://" + path}, orangeChecklist, 0.5)

	assert.Equal(t, probe.FailureFetch, res.Failure)
	assert.True(t, errors.Is(res.Err, probe.ErrBodyTooLarge))
}

func TestEvaluateLocalFileWithoutSlashes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte("<div class='orange-500 dropdown'>"), 0o644))

	res := probe.Evaluate(context.Background(), probe.Target{URL: "file:" + path}, orangeChecklist, 0.7)

	assert.True(t, res.Ran(), res.Message)
	assert.Equal(t, 2, res.Found)
	assert.Contains(t, res.ContentType, "text/html")
}

func TestEvaluateRecordsContentType(t *testing.T) {
	srv := serveBody(t, "<div class='orange-500 dropdown'>")

	res := probe.Evaluate(context.Background(), probe.Target{URL: srv.URL, ExpectContentType: "text/html"}, orangeChecklist, 0.7)

	assert.True(t, res.Ran(), res.Message)
	assert.Equal(t, "text/html", res.ContentType)
	assert.True(t, res.Passed)
}

func TestEvaluateUnexpectedContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"class":"orange-500 dropdown"}`)
	}))
	defer srv.Close()

	res := probe.Evaluate(context.Background(), probe.Target{URL: srv.URL, ExpectContentType: "text/html"}, orangeChecklist, 0.7)

	assert.Equal(t, probe.FailureContentType, res.Failure)
	assert.Equal(t, "application/json", res.ContentType)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 0, res.Found)
	assert.False(t, res.Passed)

	var ctErr *probe.ContentTypeError
	require.True(t, errors.As(res.Err, &ctErr))
	assert.Equal(t, "text/html", ctErr.Expected)
}

func TestProberDefaultTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	prober := probe.NewProber(probe.WithDefaultTimeout(50 * time.Millisecond))
	start := time.Now()
	res := prober.Evaluate(context.Background(), probe.Target{URL: srv.URL}, orangeChecklist, 0.7)

	assert.Equal(t, probe.FailureFetch, res.Failure)
	assert.Less(t, time.Since(start), time.Second)
}
