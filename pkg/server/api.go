package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func (s *Server) registerHandler(path string, methods []string, handler func(http.ResponseWriter, *http.Request)) {
	s.router.
		Path(path).
		HandlerFunc(handler).
		Methods(methods...)
}

// Start serves the API until ctx is cancelled or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    s.listenAddr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			log.WithError(err).Warn("failed to shut down status server")
		}
	}()

	log.Infof("status server listens on %s", s.srv.Addr)
	if err := s.listen(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown() error {
	if s.srv == nil {
		return nil
	}

	s.shutdownOnce.Do(func() {
		log.Info("shutting down status server")
		close(s.done)
	})
	return s.srv.Shutdown(context.Background())
}

func (s *Server) listen() error {
	socketParts := strings.Split(s.srv.Addr, "unix://")
	if len(socketParts) <= 1 {
		return s.srv.ListenAndServe()
	}

	return s.listenOnUnixSocket(socketParts[1])
}

func (s *Server) listenOnUnixSocket(socketFile string) error {
	socketDir := path.Dir(socketFile)
	if err := os.MkdirAll(socketDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to prepare folder for socket-file")
	}
	_ = os.Remove(socketFile)

	conn, err := net.Listen("unix", socketFile)
	if err != nil {
		return err
	}
	return s.srv.Serve(conn)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
