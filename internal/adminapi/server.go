// Package adminapi serves the operator-facing admin introspection API: a
// Prometheus /metrics endpoint and a small JSON API that internal/dbss's
// Server.Admin command channel backs, used by cmd/dbssctl instead of a
// hand-rolled gRPC service.
package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/dbss/internal/dbss"
	"github.com/marmos91/dbss/internal/logger"
)

// Server provides an HTTP server for the admin introspection API.
//
// Endpoints:
//   - GET /health: Liveness probe
//   - GET /health/ready: Readiness probe
//   - GET /metrics: Prometheus exposition
//   - GET /debug/active: list Active Object Records
//   - GET /debug/pending: list Pending Fetch Entries
//   - POST /debug/active/{doid}/evict: force-evict an Active Object Record
//
// The server supports graceful shutdown with a configurable timeout.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates a new admin API HTTP server bound to admin, the
// command channel Server.Run (internal/dbss) services on its dispatch
// loop goroutine. The server is created in a stopped state; call
// Start() to begin serving requests.
func NewServer(config Config, admin chan<- dbss.AdminCommand) *Server {
	config.applyDefaults()

	router := NewRouter(admin, config.CommandTimeout)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		config: config,
	}
}

// Start starts the admin API HTTP server and blocks until ctx is
// cancelled or the server fails to serve.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("admin API listening", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("admin API shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("admin API failed: %w", err)
	}
}

// Stop initiates graceful shutdown. Safe to call multiple times and
// concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("admin API shutdown initiated")
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("admin API shutdown error: %w", err)
			logger.Error("admin API shutdown error", logger.Err(err))
		} else {
			logger.Info("admin API stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the configured TCP port.
func (s *Server) Port() int {
	return s.config.Port
}
