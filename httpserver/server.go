package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/graphflow/declnet"
	"github.com/kbukum/graphflow/logger"
	"github.com/kbukum/graphflow/observability"
)

// Server is a Gin-backed HTTP front end for compiling and running
// declaratively wired networks, wrapped with h2c so a client may speak
// HTTP/2 to it without TLS.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger
}

// Option configures optional Server behavior.
type Option func(*options)

type options struct {
	metrics *observability.Metrics
}

// WithMetrics records OpenTelemetry instruments for every /v1/run execution.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(o *options) { o.metrics = metrics }
}

// New creates a Server that resolves incoming network definitions against
// registry. log may be nil, in which case logger.Get("httpserver") is used:
// the logger registered under that name, or the global logger tagged with
// that component.
func New(cfg Config, registry *declnet.BodyRegistry, log *logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.Get("httpserver")
	} else {
		log = log.WithComponent("httpserver")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(recovery(log), requestID(), requestMetrics(o.metrics))
	registerRoutes(engine, registry, log, o.metrics)

	h2s := &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: 120 * time.Second}
	handler := h2c.NewHandler(engine, h2s)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Server{
		config: cfg,
		engine: engine,
		log:    log,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
	}
}

// Engine returns the underlying Gin engine, useful for tests that want to
// drive handlers directly via httptest without binding a port.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Start binds the listener and serves in a background goroutine, returning
// once the port is bound.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("httpserver: failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", logger.Fields("error", err.Error()))
		}
	}()

	s.log.Info("http server started", logger.Fields("addr", s.httpServer.Addr))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpserver: shutdown error: %w", err)
	}
	return nil
}
