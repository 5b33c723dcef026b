package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veritasworks/veritas-core/internal/api/handlers"
	"github.com/veritasworks/veritas-core/internal/api/middleware"
	"github.com/veritasworks/veritas-core/internal/config"
	"github.com/veritasworks/veritas-core/internal/insights"
	"github.com/veritasworks/veritas-core/internal/monitoring"
	"github.com/veritasworks/veritas-core/internal/validator"
	"github.com/veritasworks/veritas-core/pkg/cache"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// Server is the REST surface over the validation and insight services.
type Server struct {
	config     *config.Config
	logger     logger.Logger
	cache      cache.ResultsCache
	validator  *validator.Validator
	insights   *insights.Service
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer builds the router with middleware and routes registered.
func NewServer(cfg *config.Config, log logger.Logger, results cache.ResultsCache,
	v *validator.Validator, insightSvc *insights.Service) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		logger:    log,
		cache:     results,
		validator: v,
		insights:  insightSvc,
		router:    gin.New(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))
	s.router.Use(monitoring.HTTPMetricsMiddleware())

	if s.config.Monitoring.Enabled {
		monitoring.SetupPrometheusMetrics(s.router)
	}
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.cache, s.logger)
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)

	v1 := s.router.Group("/api/v1")

	validationHandler := handlers.NewValidationHandler(s.validator, s.logger)
	v1.POST("/articles/validate", validationHandler.Validate)
	v1.GET("/articles/:id/trust", validationHandler.GetTrust)

	insightsHandler := handlers.NewInsightsHandler(s.insights, s.logger)
	v1.POST("/companies/:id/analyze", insightsHandler.Analyze)
	v1.GET("/companies/:id/insights", insightsHandler.List)
	v1.POST("/insights/:id/acknowledge", insightsHandler.Acknowledge)
	v1.POST("/insights/:id/resolve", insightsHandler.Resolve)
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("REST API server starting", "port", s.config.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down REST API server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
