package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/msto63/spi/foundation/pascal"
	"github.com/msto63/spi/internal/history"
	"github.com/msto63/spi/pkg/core/health"
	"github.com/msto63/spi/pkg/core/logging"
	"github.com/msto63/spi/pkg/core/version"
)

// Server is the WebSocket evaluation server
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	health     *health.Registry
	logger     *logging.Logger
	config     Config
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration // request headers
	WriteTimeout time.Duration // per WebSocket message

	// IdleTimeout closes WebSocket connections that stay silent
	IdleTimeout time.Duration

	// MaxInputLength bounds incoming message size; 0 leaves it unbounded
	MaxInputLength int
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           8765,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxInputLength: pascal.DefaultMaxInputLength,
	}
}

// Options holds the collaborators of the server
type Options struct {
	Engine pascal.Executor

	// Journal is optional
	Journal history.Recorder

	// Health defaults to a registry with an engine self-check
	Health *health.Registry

	Logger *logging.Logger
}

// New creates a new server
func New(cfg Config, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("spi-server")
	}
	engine := opts.Engine
	if engine == nil {
		engine = pascal.New(pascal.Options{})
	}

	healthRegistry := opts.Health
	if healthRegistry == nil {
		healthRegistry = health.NewRegistry("spi", version.ComponentVersion("websocket"))
		healthRegistry.Register(health.EngineCheck(engine))
	}

	wsHandler := NewWebSocketHandler(engine, opts.Journal, logger, WSConfig{
		IdleTimeout:    cfg.IdleTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxInputLength: cfg.MaxInputLength,
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.HandleFunc("/healthz", healthHandler(healthRegistry))

	handler := loggingMiddleware(logger, mux)

	// Server-wide read/write deadlines would cut WebSocket connections;
	// the handler sets its own per message.
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadTimeout,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
	}
}

// healthHandler reports the registry as JSON; unhealthy yields 503
func healthHandler(registry *health.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := registry.Check(ctx)

		w.Header().Set("Content-Type", "application/json")
		if report.Status == health.StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(report)
	}
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for the WebSocket upgrade
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Handler returns the HTTP handler, for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("Starting WebSocket server",
		"host", s.config.Host,
		"port", s.config.Port,
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() error {
	s.logger.Info("Starting WebSocket server (async)",
		"host", s.config.Host,
		"port", s.config.Port,
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping WebSocket server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	return s.httpServer.Addr
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
