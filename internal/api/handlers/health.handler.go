package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veritasworks/veritas-core/pkg/cache"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

type HealthHandler struct {
	cache  cache.ResultsCache
	logger logger.Logger
}

func NewHealthHandler(c cache.ResultsCache, log logger.Logger) *HealthHandler {
	return &HealthHandler{cache: c, logger: log}
}

// GET /health - quick liveness probe.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "veritas-core",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GET /ready - readiness including the results cache.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp := gin.H{
		"status":    "healthy",
		"service":   "veritas-core",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err := h.cache.HealthCheck(ctx); err != nil {
		resp["status"] = "unhealthy"
		resp["error"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
