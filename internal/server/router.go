// internal/server/router.go - greeting service routes and HTTP server
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codebase-docgen/internal/config"
	"codebase-docgen/internal/errs"
	"codebase-docgen/internal/handler"
	"codebase-docgen/internal/metrics"
	"codebase-docgen/pkg/logger"
	"codebase-docgen/pkg/response"
)

// Server runs the greeting service.
type Server interface {
	Start() error
	Shutdown(ctx context.Context) error
	Handler() http.Handler
}

type server struct {
	cfg        config.ServerConfig
	engine     *gin.Engine
	greeting   *handler.GreetingHandler
	registry   *prometheus.Registry
	metrics    *metrics.HTTPMetrics
	logger     logger.Logger
	httpServer *http.Server
}

// NewServer builds the engine with middleware and routes; metrics are registered on reg.
func NewServer(cfg config.ServerConfig, greeting *handler.GreetingHandler, reg *prometheus.Registry, logger logger.Logger) Server {
	gin.SetMode(gin.ReleaseMode)
	s := &server{
		cfg:      cfg,
		engine:   gin.New(),
		greeting: greeting,
		registry: reg,
		metrics:  metrics.NewHTTPMetrics(reg),
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:           cfg.Address,
		Handler:        s.engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	return s
}

func (s *server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving on cfg.Address until Shutdown. It returns nil when
// Shutdown was called, even before the listener was opened.
func (s *server) Start() error {
	s.logger.Info("starting HTTP server on %s", s.cfg.Address)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *server) setupMiddleware() {
	s.engine.Use(RecoveryMiddleware(s.logger))
	s.engine.Use(RequestIDMiddleware())
	s.engine.Use(LoggingMiddleware(s.logger))
	s.engine.Use(MetricsMiddleware(s.metrics))
	s.engine.Use(SecurityMiddleware())
	s.engine.Use(RateLimitMiddleware(s.cfg.RateLimit, s.cfg.RateBurst, s.logger))
}

func (s *server) setupRoutes() {
	s.engine.GET("/", s.greeting.Hello)
	s.engine.GET("/status", s.greeting.Status)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	s.engine.HandleMethodNotAllowed = true
	s.engine.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, errs.ErrRouteNotFound)
	})
	s.engine.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, errs.ErrMethodNotAllowed)
	})
}
