package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritasworks/veritas-core/internal/insights"
	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// InsightsHandler exposes the company analysis pass and the insight
// lifecycle endpoints.
type InsightsHandler struct {
	service *insights.Service
	logger  logger.Logger
}

func NewInsightsHandler(s *insights.Service, log logger.Logger) *InsightsHandler {
	return &InsightsHandler{service: s, logger: log}
}

// AnalyzeRequest is the POST /companies/:id/analyze body: the company
// profile plus the national indicator snapshot to project.
type AnalyzeRequest struct {
	Profile  *models.CompanyProfile `json:"profile" binding:"required"`
	Snapshot *models.Layer2Output   `json:"snapshot" binding:"required"`
}

// AcknowledgeRequest is the POST /insights/:id/acknowledge body.
type AcknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledged_by" binding:"required"`
}

// ResolveRequest is the POST /insights/:id/resolve body.
type ResolveRequest struct {
	Notes        string `json:"notes"`
	ActualImpact string `json:"actual_impact"`
}

// POST /api/v1/companies/:id/analyze
func (h *InsightsHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile and snapshot are required"})
		return
	}
	req.Profile.ID = c.Param("id")

	result, err := h.service.Analyze(c.Request.Context(), req.Profile, req.Snapshot)
	if err != nil {
		h.logger.Error("company analysis failed", "company_id", req.Profile.ID, "error", err)
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/v1/companies/:id/insights
func (h *InsightsHandler) List(c *gin.Context) {
	companyID := c.Param("id")
	list, err := h.service.ListInsights(c.Request.Context(), companyID)
	if err != nil {
		h.logger.Error("insight list failed", "company_id", companyID, "error", err)
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company_id": companyID, "insights": list, "count": len(list)})
}

// POST /api/v1/insights/:id/acknowledge
func (h *InsightsHandler) Acknowledge(c *gin.Context) {
	var req AcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "acknowledged_by is required"})
		return
	}

	in, err := h.service.Acknowledge(c.Request.Context(), c.Param("id"), req.AcknowledgedBy)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}

// POST /api/v1/insights/:id/resolve
func (h *InsightsHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in, err := h.service.Resolve(c.Request.Context(), c.Param("id"), req.Notes, req.ActualImpact)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}

// writeError maps domain errors onto HTTP statuses.
func (h *InsightsHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "insight not found"})
	case errors.Is(err, insights.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
