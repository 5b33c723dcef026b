package cache

import (
	"context"
	"time"

	"github.com/veritasworks/veritas-core/internal/models"
)

// Default TTLs for the result caches. All entries are best-effort: callers
// must tolerate misses.
const (
	TrustScoreTTL = time.Hour
	InsightsTTL   = 15 * time.Minute
	NarrativeTTL  = time.Hour
)

// Options configures the Redis-backed results cache.
type Options struct {
	Addr     string
	Password string
	DB       int

	// DefaultTTL applies to Set calls that pass no TTL. Default 1 h.
	DefaultTTL time.Duration
	// TrustTTL bounds cached trust scores and validation results.
	// Default TrustScoreTTL.
	TrustTTL time.Duration
}

// DefaultOptions returns the cache defaults.
func DefaultOptions() Options {
	return Options{DefaultTTL: time.Hour, TrustTTL: TrustScoreTTL}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.DefaultTTL <= 0 {
		o.DefaultTTL = def.DefaultTTL
	}
	if o.TrustTTL <= 0 {
		o.TrustTTL = def.TrustTTL
	}
	return o
}

// ResultsCache is the shared caching surface for validation results, trust
// scores, per-company insight lists and generated narratives.
type ResultsCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	CacheValidationResult(ctx context.Context, articleID string, result *models.ValidationResult) error
	GetCachedValidationResult(ctx context.Context, articleID string) (*models.ValidationResult, error)

	CacheTrustScore(ctx context.Context, articleID string, score *models.TrustScore) error
	GetCachedTrustScore(ctx context.Context, articleID string) (*models.TrustScore, error)

	CacheInsights(ctx context.Context, companyID string, insights []*models.Insight) error
	GetCachedInsights(ctx context.Context, companyID string) ([]*models.Insight, error)

	CacheNarrative(ctx context.Context, insightID string, narrative *models.Narrative) error
	GetCachedNarrative(ctx context.Context, insightID string) (*models.Narrative, error)

	HealthCheck(ctx context.Context) error
}
