// Package api exposes the site editing pipeline over HTTP.
//
// Endpoints:
//
//	POST /api/sites                    create or regenerate a site (SSE)
//	POST /api/sites/edit               run a credit-gated edit (SSE)
//	GET  /api/sites/{email}            fetch the stored site record
//	GET  /api/sites/{email}/versions   list version history, newest first
//	GET  /health                       liveness probe
//	GET  /ready                        readiness probe
//
// The generation endpoints answer pre-generation failures as plain JSON with
// a meaningful status code, and switch to a Server-Sent Events stream only
// once model output starts flowing. See edit.go for the event contract.
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (recovery, request ID, logging)
//   - health.go: health check endpoints (/health, /ready)
//   - site.go: site creation, fetch, and version listing
//   - edit.go: the streaming edit endpoint
//   - sse.go: Server-Sent Events writer
//   - response.go: JSON response helpers and error mapping
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagesmith/pagesmith/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8700"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Generation streams for a while, so this is generous.
	WriteTimeout = 5 * time.Minute

	// IdleTimeout is the maximum time to wait for the next request on keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for the site editing API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health *HealthHandler
	site   *SiteHandler
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(svc EditorService, pool *pgxpool.Pool, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:    mux,
		logger: logger,
		health: NewHealthHandler(pool, logger),
		site:   NewSiteHandler(svc, logger),
	}

	s.health.RegisterRoutes(mux)
	s.site.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → request ID → logging → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
