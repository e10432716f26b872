// Package server exposes suite reports and dependency readiness over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/mittwald/pageprobe/pkg/readiness"
	"github.com/mittwald/pageprobe/pkg/suite"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultListenAddr    = ":9102"
	DefaultWatchInterval = 10 * time.Second
	dependencyTimeout    = time.Second

	contextKeySuite contextKey = "suite"
)

type contextKey string

type Runner interface {
	Run(ctx context.Context, s *suite.Suite) *suite.Report
}

type StatusResponse struct {
	OK           bool                          `json:"ok"`
	Suites       []*suite.Report               `json:"suites"`
	Dependencies map[string]*readiness.Result `json:"dependencies,omitempty"`
}

type SuiteListResponse struct {
	Suites []string `json:"suites"`
}

type Server struct {
	suites        map[string]*suite.Suite
	order         []string
	runner        Runner
	dependencies  *readiness.Handler
	listenAddr    string
	watchInterval time.Duration

	router       *mux.Router
	upgrader     websocket.Upgrader
	srv          *http.Server
	done         chan struct{}
	shutdownOnce sync.Once
}

type Option func(*Server)

func WithListenAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.listenAddr = addr
		}
	}
}

func WithWatchInterval(interval time.Duration) Option {
	return func(s *Server) {
		if interval > 0 {
			s.watchInterval = interval
		}
	}
}

// WithDependencies adds the dependency status to GET /status.
func WithDependencies(h *readiness.Handler) Option {
	return func(s *Server) {
		s.dependencies = h
	}
}

func New(suites []*suite.Suite, runner Runner, opts ...Option) *Server {
	if runner == nil {
		runner = suite.NewRunner(nil)
	}

	s := &Server{
		suites:        make(map[string]*suite.Suite, len(suites)),
		order:         make([]string, 0, len(suites)),
		runner:        runner,
		listenAddr:    DefaultListenAddr,
		watchInterval: DefaultWatchInterval,
		router:        mux.NewRouter(),
		done:          make(chan struct{}),
	}

	for _, st := range suites {
		s.suites[st.Name] = st
		s.order = append(s.order, st.Name)
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerHandler("/status", []string{http.MethodGet}, s.handleStatus)
	s.registerHandler("/v1/suites", []string{http.MethodGet}, s.handleSuiteList)

	v1 := s.router.PathPrefix("/v1/suite/{suite}").Subrouter()
	v1.Use(s.suiteMiddleware)
	v1.Path("/status").Methods(http.MethodGet).HandlerFunc(s.handleSuiteStatus)
	v1.Path("/watch").Methods(http.MethodGet).HandlerFunc(s.handleSuiteWatch)

	return s
}

func (s *Server) suiteMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		name, ok := mux.Vars(req)["suite"]
		if !ok {
			http.Error(w, "suite parameter is missing", http.StatusBadRequest)
			return
		}

		st, ok := s.suites[name]
		if !ok {
			http.Error(w, fmt.Sprintf("suite %q not found", name), http.StatusNotFound)
			return
		}

		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), contextKeySuite, st)))
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, req *http.Request) {
	response := StatusResponse{
		OK:     true,
		Suites: make([]*suite.Report, len(s.order)),
	}

	g, ctx := errgroup.WithContext(req.Context())
	for i, name := range s.order {
		i, st := i, s.suites[name]
		g.Go(func() error {
			response.Suites[i] = s.runner.Run(ctx, st)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range response.Suites {
		response.OK = response.OK && r.OK()
	}

	if s.dependencies != nil {
		deps, ok := s.dependencies.Status(dependencyTimeout)
		response.Dependencies = deps.Dependencies
		response.OK = response.OK && ok
	}

	writeJSON(w, response, response.OK)
}

func (s *Server) handleSuiteList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, SuiteListResponse{Suites: s.order}, true)
}

func (s *Server) handleSuiteStatus(w http.ResponseWriter, req *http.Request) {
	st := req.Context().Value(contextKeySuite).(*suite.Suite)
	report := s.runner.Run(req.Context(), st)
	writeJSON(w, report, report.OK())
}

func (s *Server) handleSuiteWatch(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.WithError(err).Warn("failed to upgrade connection")
		return
	}
	defer conn.Close()

	st := req.Context().Value(contextKeySuite).(*suite.Suite)
	logger := log.WithFields(log.Fields{"kind": "watch", "name": st.Name})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// handle client disconnects
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(s.watchInterval)
	defer ticker.Stop()

	for {
		report := s.runner.Run(ctx, st)
		if ctx.Err() != nil {
			return
		}
		if err := conn.WriteJSON(report); err != nil {
			logger.WithError(err).Debug("watcher went away")
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-s.done:
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(time.Second),
			)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, body interface{}, ok bool) {
	out, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_, _ = w.Write(out)
}
