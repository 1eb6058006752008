// Package app wires the HTTP router and server.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mandalnilabja/goatrelay/internal/config"
)

// Server timeouts that do not depend on endpoint configuration.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 60 * time.Second
	idleTimeout       = 120 * time.Second

	// writeSlack keeps the server's write deadline past the longest upstream
	// timeout so error responses and [DONE] still reach the client.
	writeSlack = 30 * time.Second
)

// Server wraps the HTTP server with its configuration
type Server struct {
	httpServer *http.Server
	config     *config.Config
	logger     *slog.Logger
}

// NewServer creates a new configured HTTP server instance
func NewServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.Timeouts.Longest() + writeSlack,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return &Server{
		httpServer: srv,
		config:     cfg,
		logger:     logger,
	}
}

// Start begins listening and serving HTTP requests. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.config.ServerPort)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight relays until
// ctx is done, then force-closes what is left.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("graceful shutdown failed; forcing close", "error", err)
		return s.httpServer.Close()
	}
	return nil
}
