// Package server provides the HTTP server for the income dashboard.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/spektr-org/incomelens/cleaner"
	"github.com/spektr-org/incomelens/engine"
	"github.com/spektr-org/incomelens/errors"
	"github.com/spektr-org/incomelens/logging"
	"github.com/spektr-org/incomelens/server/cache"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	view      engine.RecordView
	report    *cleaner.Report
	cache     *cache.Cache
	logger    *zerolog.Logger
	config    Config
	startTime time.Time
}

// New creates a new server over a cleaned, read-only dataset view.
func New(view engine.RecordView, report *cleaner.Report, cfg Config, logger *zerolog.Logger) (*Server, error) {
	if view == nil {
		return nil, errors.NewConfigError("server", "dataset view is required", nil)
	}

	if logger == nil {
		logger = logging.Default()
	}

	defaults := DefaultConfig()
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = defaults.PathPrefix
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}

	logger.Debug().
		Int("records", view.Len()).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Creating new server instance")

	return &Server{
		view:      view,
		report:    report,
		cache:     cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
	}, nil
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// ListenAndServe serves until ctx is cancelled, then drains connections
// within the shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", srv.Addr).
			Int("records", s.view.Len()).
			Msg("Server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		s.logger.Info().
			Dur("uptime", time.Since(s.startTime)).
			Msg("Server stopped gracefully")
		return nil
	}
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
