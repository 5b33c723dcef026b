package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/validator"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// ValidationHandler exposes on-demand article validation and cached trust
// score lookups.
type ValidationHandler struct {
	validator *validator.Validator
	logger    logger.Logger
}

func NewValidationHandler(v *validator.Validator, log logger.Logger) *ValidationHandler {
	return &ValidationHandler{validator: v, logger: log}
}

// ValidateRequest is the POST /articles/validate body. A single article may
// be sent via the "article" field, a batch via "articles".
type ValidateRequest struct {
	Article  *models.Article   `json:"article"`
	Articles []*models.Article `json:"articles"`
}

// ValidateResponse wraps the batch result.
type ValidateResponse struct {
	Results []*models.ValidationResult `json:"results"`
	Skipped int                        `json:"skipped"`
}

// POST /api/v1/articles/validate
func (h *ValidationHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	articles := req.Articles
	if req.Article != nil {
		articles = append(articles, req.Article)
	}
	if len(articles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no articles supplied"})
		return
	}

	results := h.validator.ValidateBatch(c.Request.Context(), articles)
	c.JSON(http.StatusOK, ValidateResponse{
		Results: results,
		Skipped: len(articles) - len(results),
	})
}

// GET /api/v1/articles/:id/trust
func (h *ValidationHandler) GetTrust(c *gin.Context) {
	articleID := c.Param("id")
	score, err := h.validator.CachedTrustScore(c.Request.Context(), articleID)
	if err != nil || score == nil {
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			h.logger.Warn("trust score lookup failed", "article_id", articleID, "error", err)
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached trust score for article"})
		return
	}
	c.JSON(http.StatusOK, score)
}
