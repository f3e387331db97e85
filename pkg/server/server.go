package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/server/handlers"
	"mercator-hq/warden/pkg/server/middleware"
	"mercator-hq/warden/pkg/telemetry/health"
	"mercator-hq/warden/pkg/telemetry/metrics"
	"mercator-hq/warden/pkg/telemetry/tracing"
)

// Deps are the components the bridge serves.
type Deps struct {
	Enforcer  handlers.Enforcer
	Lifecycle handlers.Lifecycle
	Metrics   *metrics.Collector
	Logger    *slog.Logger

	// Health holds optional component checks reported by /readyz.
	Health *health.Checker
}

// Server is the host bridge.
type Server struct {
	config  config.ServerConfig
	metrics config.MetricsConfig
	deps    Deps
	hub     *handlers.Hub
	logger  *slog.Logger

	mu           sync.RWMutex
	httpServer   *http.Server
	listener     net.Listener
	isRunning    bool
	shutdownOnce sync.Once
}

// New creates a bridge. The returned server's Hub should be installed as
// the enforcer's redirector.
func New(cfg config.ServerConfig, metricsCfg config.MetricsConfig, deps Deps) (*Server, error) {
	if deps.Enforcer == nil {
		return nil, fmt.Errorf("server: enforcer is required")
	}
	if deps.Lifecycle == nil {
		return nil, fmt.Errorf("server: lifecycle is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	logger := deps.Logger.With("component", "server")

	return &Server{
		config:  cfg,
		metrics: metricsCfg,
		deps:    deps,
		hub:     handlers.NewHub(logger),
		logger:  logger,
	}, nil
}

// Hub returns the WebSocket hub, which implements enforcer.Redirector.
func (s *Server) Hub() *handlers.Hub {
	return s.hub
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /v1/navigation", handlers.NewNavigationHandler(s.deps.Enforcer, s.logger))
	mux.Handle("DELETE /v1/tabs/{id}", handlers.NewTabHandler(s.deps.Enforcer))
	mux.Handle("POST /v1/messages", handlers.NewMessageHandler(s.deps.Enforcer))
	mux.Handle("GET /v1/ws", handlers.NewWebSocketHandler(s.deps.Enforcer, s.hub, s.config.AllowedOrigins, s.logger))
	mux.Handle("POST /v1/refresh", handlers.NewRefreshHandler(s.deps.Lifecycle))
	mux.Handle("GET /v1/config", handlers.NewConfigHandler(s.deps.Lifecycle))
	mux.Handle("GET /healthz", handlers.NewHealthHandler())
	mux.Handle("GET /readyz", handlers.NewReadyHandler(s.deps.Lifecycle, s.deps.Health))
	if s.metrics.Enabled && s.metrics.Path != "" {
		mux.Handle("GET "+s.metrics.Path, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.BodyLimit(s.config.MaxBodyBytes)(handler)
	handler = middleware.CORS(middleware.DefaultCORSConfig(s.config.AllowedOrigins))(handler)
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.RequestID(handler)
	handler = tracing.Middleware(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}

// Start listens on the configured address and serves until ctx is
// canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.listener = ln
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting host bridge", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server and disconnects WebSocket
// clients.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		srv := s.httpServer
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = config.DefaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		s.hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("host bridge stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
