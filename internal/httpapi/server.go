package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// shutdownTimeout bounds graceful shutdown once the run context ends.
const shutdownTimeout = 5 * time.Second

// ErrServerClosed is returned by Listen after Run has finished.
var ErrServerClosed = errors.New("httpapi: server closed")

// Server runs the API on one address.
type Server struct {
	srv  *http.Server
	diag *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

// NewServer creates a server for handler on addr.
func NewServer(addr string, handler http.Handler, diag *slog.Logger) *Server {
	if diag == nil {
		diag = slog.Default()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ErrorLog:          slog.NewLogLogger(diag.Handler(), slog.LevelWarn),
		},
		diag: diag,
	}
}

// Listen binds the address. Run calls it when it has not been called.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrServerClosed
	}
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("httpapi: listen %s: %w", s.srv.Addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.srv.Addr
}

// Run serves until ctx is done, then shuts down gracefully. It has the
// shape of app.Runner.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	s.diag.Info("http api listening", "module", "http", "addr", ln.Addr().String())

	errc := make(chan error, 1)
	go func() {
		errc <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		s.markClosed()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("httpapi: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(shutdownCtx)
	<-errc
	s.markClosed()
	if err != nil {
		return fmt.Errorf("httpapi: shutdown: %w", err)
	}
	s.diag.Info("http api stopped", "module", "http")
	return nil
}

func (s *Server) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
