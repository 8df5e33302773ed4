package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

// Pinger is a simple health-check interface for a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the debug/health sidecar: it never carries detection
// traffic (that's the gRPC adapter's job), only operational surface —
// liveness, the active boot configuration, and Prometheus metrics.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	logger     *slog.Logger

	version      string
	configStore  Pinger
	bootSnapshot func() *domain.ConfigSnapshot
}

// Config holds debug server configuration.
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Host: "0.0.0.0", Port: 8081, Version: "dev"}
}

// NewServer builds the debug/health mux. bootSnapshot returns the most
// recently fetched configuration snapshot for /debug/config to dump;
// configStore backs /healthz's dependency check and may be nil.
func NewServer(cfg Config, configStore Pinger, bootSnapshot func() *domain.ConfigSnapshot, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:       http.NewServeMux(),
		logger:       logger,
		version:      cfg.Version,
		configStore:  configStore,
		bootSnapshot: bootSnapshot,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	recovery := NewRecoveryMiddleware(s.logger)
	logging := NewLoggingMiddleware(s.logger)
	wrap := func(h http.HandlerFunc) http.Handler {
		return logging.Handler(recovery.Handler(h))
	}

	s.router.Handle("GET /healthz", wrap(s.handleHealthz))
	s.router.Handle("GET /debug/config", wrap(s.handleDebugConfig))
	s.router.Handle("GET /metrics", promhttp.Handler())
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("debug server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return s.Stop(context.Background())
	case err := <-errCh:
		return err
	}
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
