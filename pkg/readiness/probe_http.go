package readiness

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/mittwald/pageprobe/internal/config"
	"github.com/mittwald/pageprobe/internal/helper"
	log "github.com/sirupsen/logrus"
)

type httpProbe struct {
	url     string
	headers map[string]string
	timeout time.Duration
	status  *regexp.Regexp
}

// NewHttpProbe checks that a GET on the configured endpoint answers with a
// status line matching expectStatus (any 1xx-3xx by default).
func NewHttpProbe(cfg *config.HTTP) (*httpProbe, error) {
	scheme := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Scheme), "http", "scheme", "http")
	hostname := helper.ResolveEnv(cfg.Hostname)
	port := helper.ResolveEnv(cfg.Port)
	timeoutStr := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Timeout), "5s", "timeout", "http")
	expectStatus := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.ExpectStatus), `^(1|2|3)\d\d\b`, "expectStatus", "http")

	host := hostname
	if port != "" {
		host = net.JoinHostPort(hostname, port)
	}

	status, err := regexp.Compile(expectStatus)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP status line regexp: %w", err)
	}

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration: %w", err)
	}

	u := url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   helper.ResolveEnv(cfg.Path),
	}

	return &httpProbe{
		url:     u.String(),
		headers: cfg.Headers,
		timeout: timeout,
		status:  status,
	}, nil
}

func (h *httpProbe) Exec() error {
	client := &http.Client{
		Timeout: h.timeout,
	}

	req, err := http.NewRequest(http.MethodGet, h.url, nil)
	if err != nil {
		return err
	}

	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if !h.status.MatchString(res.Status) {
		return fmt.Errorf("http service %q returned status %q", h.url, res.Status)
	}

	log.WithFields(log.Fields{"kind": "dependency", "name": "http", "status": "alive", "host": h.url}).Debug()
	return nil
}
