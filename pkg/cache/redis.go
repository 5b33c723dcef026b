package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/internal/monitoring"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// redisCache implements ResultsCache against a single Redis/Valkey node.
type redisCache struct {
	client *redis.Client
	log    logger.Logger
	opts   Options
}

// NewRedis connects to the configured node and returns a ResultsCache,
// failing fast when it is unreachable.
func NewRedis(opts Options, log logger.Logger) (ResultsCache, error) {
	opts = opts.withDefaults()
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to results cache: %w", err)
	}

	return &redisCache{client: client, log: log, opts: opts}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		monitoring.RecordCacheOperation("get", "miss")
		return nil, models.ErrNotFound
	}
	if err != nil {
		monitoring.RecordCacheOperation("get", "error")
		return nil, err
	}
	monitoring.RecordCacheOperation("get", "hit")
	return b, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	var data []byte
	switch x := value.(type) {
	case []byte:
		data = x
	case string:
		data = []byte(x)
	default:
		j, err := json.Marshal(x)
		if err != nil {
			monitoring.RecordCacheOperation("set", "error")
			return fmt.Errorf("marshal value for key %s: %w", key, err)
		}
		data = j
	}
	if ttl <= 0 {
		ttl = c.opts.DefaultTTL
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		monitoring.RecordCacheOperation("set", "error")
		return err
	}
	monitoring.RecordCacheOperation("set", "success")
	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		monitoring.RecordCacheOperation("delete", "error")
		return err
	}
	monitoring.RecordCacheOperation("delete", "success")
	return nil
}

func (c *redisCache) CacheValidationResult(ctx context.Context, articleID string, result *models.ValidationResult) error {
	return c.Set(ctx, validationKey(articleID), result, c.opts.TrustTTL)
}

func (c *redisCache) GetCachedValidationResult(ctx context.Context, articleID string) (*models.ValidationResult, error) {
	data, err := c.Get(ctx, validationKey(articleID))
	if err != nil {
		return nil, err
	}
	var result models.ValidationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal validation result: %w", err)
	}
	return &result, nil
}

func (c *redisCache) CacheTrustScore(ctx context.Context, articleID string, score *models.TrustScore) error {
	return c.Set(ctx, trustKey(articleID), score, c.opts.TrustTTL)
}

func (c *redisCache) GetCachedTrustScore(ctx context.Context, articleID string) (*models.TrustScore, error) {
	data, err := c.Get(ctx, trustKey(articleID))
	if err != nil {
		return nil, err
	}
	var score models.TrustScore
	if err := json.Unmarshal(data, &score); err != nil {
		return nil, fmt.Errorf("unmarshal trust score: %w", err)
	}
	return &score, nil
}

func (c *redisCache) CacheInsights(ctx context.Context, companyID string, insights []*models.Insight) error {
	return c.Set(ctx, insightsKey(companyID), insights, InsightsTTL)
}

func (c *redisCache) GetCachedInsights(ctx context.Context, companyID string) ([]*models.Insight, error) {
	data, err := c.Get(ctx, insightsKey(companyID))
	if err != nil {
		return nil, err
	}
	var insights []*models.Insight
	if err := json.Unmarshal(data, &insights); err != nil {
		return nil, fmt.Errorf("unmarshal insights: %w", err)
	}
	return insights, nil
}

func (c *redisCache) CacheNarrative(ctx context.Context, insightID string, narrative *models.Narrative) error {
	return c.Set(ctx, narrativeKey(insightID), narrative, NarrativeTTL)
}

func (c *redisCache) GetCachedNarrative(ctx context.Context, insightID string) (*models.Narrative, error) {
	data, err := c.Get(ctx, narrativeKey(insightID))
	if err != nil {
		return nil, err
	}
	var n models.Narrative
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("unmarshal narrative: %w", err)
	}
	return &n, nil
}

// HealthCheck pings the cache node.
func (c *redisCache) HealthCheck(ctx context.Context) error {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	return c.client.Ping(ctx).Err()
}

func validationKey(articleID string) string { return fmt.Sprintf("validation:%s", articleID) }

func trustKey(articleID string) string     { return fmt.Sprintf("trust:%s", articleID) }
func insightsKey(companyID string) string  { return fmt.Sprintf("insights:%s", companyID) }
func narrativeKey(insightID string) string { return fmt.Sprintf("narrative:%s", insightID) }
