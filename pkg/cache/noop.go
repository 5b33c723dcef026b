package cache

import (
	"context"
	"time"

	"github.com/veritasworks/veritas-core/internal/models"
)

// noopCache satisfies ResultsCache without storing anything. Used when no
// cache endpoint is configured; every read is a miss.
type noopCache struct{}

// NewNoop returns a cache that drops writes and misses on every read.
func NewNoop() ResultsCache { return &noopCache{} }

func (n *noopCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, models.ErrNotFound
}

func (n *noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (n *noopCache) Delete(ctx context.Context, key string) error { return nil }

func (n *noopCache) CacheValidationResult(ctx context.Context, articleID string, result *models.ValidationResult) error {
	return nil
}

func (n *noopCache) GetCachedValidationResult(ctx context.Context, articleID string) (*models.ValidationResult, error) {
	return nil, models.ErrNotFound
}

func (n *noopCache) CacheTrustScore(ctx context.Context, articleID string, score *models.TrustScore) error {
	return nil
}

func (n *noopCache) GetCachedTrustScore(ctx context.Context, articleID string) (*models.TrustScore, error) {
	return nil, models.ErrNotFound
}

func (n *noopCache) CacheInsights(ctx context.Context, companyID string, insights []*models.Insight) error {
	return nil
}

func (n *noopCache) GetCachedInsights(ctx context.Context, companyID string) ([]*models.Insight, error) {
	return nil, models.ErrNotFound
}

func (n *noopCache) CacheNarrative(ctx context.Context, insightID string, narrative *models.Narrative) error {
	return nil
}

func (n *noopCache) GetCachedNarrative(ctx context.Context, insightID string) (*models.Narrative, error) {
	return nil, models.ErrNotFound
}

func (n *noopCache) HealthCheck(ctx context.Context) error { return nil }
