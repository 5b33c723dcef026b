package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/veritasworks/veritas-core/internal/models"
)

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, time.Hour, opts.DefaultTTL)
	assert.Equal(t, TrustScoreTTL, opts.TrustTTL)

	opts = Options{DefaultTTL: 2 * time.Minute, TrustTTL: 30 * time.Second}.withDefaults()
	assert.Equal(t, 2*time.Minute, opts.DefaultTTL)
	assert.Equal(t, 30*time.Second, opts.TrustTTL)
}

func TestNoop_MissesEveryRead(t *testing.T) {
	n := NewNoop()
	ctx := context.Background()

	assert.NoError(t, n.CacheValidationResult(ctx, "a1", &models.ValidationResult{ArticleID: "a1"}))
	_, err := n.GetCachedValidationResult(ctx, "a1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.NoError(t, n.CacheTrustScore(ctx, "a1", &models.TrustScore{ArticleID: "a1"}))
	_, err = n.GetCachedTrustScore(ctx, "a1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = n.Get(ctx, "anything")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, n.HealthCheck(ctx))
}
