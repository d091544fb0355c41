// Package server provides the HTTP API server for the decision engine.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"aegis-hq/minerva/pkg/config"
	"aegis-hq/minerva/pkg/server/handlers"
	"aegis-hq/minerva/pkg/server/middleware"
	"aegis-hq/minerva/pkg/telemetry/metrics"
)

// Server is the decision engine's HTTP API server.
type Server struct {
	config       config.ServerConfig
	handlers     *handlers.Handlers
	metrics      *metrics.Metrics
	metricsPath  string
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.Mutex
	isRunning    bool
}

// NewServer creates the API server. Metrics may be nil to disable the
// metrics endpoint and request instrumentation.
func NewServer(cfg config.ServerConfig, h *handlers.Handlers, m *metrics.Metrics, metricsPath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:       cfg,
		handlers:     h,
		metrics:      m,
		metricsPath:  metricsPath,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
}

// setupRoutes builds the router and wraps it in the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/decisions/evaluate", s.handlers.Evaluate)
	mux.HandleFunc("POST /v1/decisions/risk", s.handlers.Risk)
	mux.HandleFunc("POST /v1/decisions/harmonize", s.handlers.Harmonize)
	mux.HandleFunc("GET /health", s.handlers.Health)
	mux.HandleFunc("GET /ready", s.handlers.Ready)

	if s.metrics != nil {
		mux.Handle("GET "+s.metricsPath, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Timeout(s.config.RequestTimeout)(handler)
	handler = middleware.CORS(handler)
	if s.metrics != nil {
		handler = middleware.Metrics(s.metrics)(handler)
	}
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}

// Start starts the HTTP server and blocks until shutdown is triggered by
// context cancellation, SIGINT/SIGTERM, or RequestShutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting decision API server", "address", s.config.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// RequestShutdown asks a running server to shut down without a signal.
func (s *Server) RequestShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
	})
}

// Shutdown gracefully shuts down the server, letting in-flight requests
// finish within the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	s.logger.Info("decision API server stopped")
	return nil
}
