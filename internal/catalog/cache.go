// internal/catalog/cache.go
package catalog

import (
	"context"
	"encoding/json"
	"time"

	"lesson-template-workers/internal/common/logger"
	"lesson-template-workers/internal/common/metrics"
	"lesson-template-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheKey is versioned so a record shape change never reads stale JSON.
const DefaultCacheKey = "catalog:templates:v1"

// CachedProvider keeps the last snapshot of next in redis for ttl. Redis
// failures are logged and fall through to next.
type CachedProvider struct {
	next   Provider
	redis  *redis.Client
	key    string
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedProvider(next Provider, rdb *redis.Client, key string, ttl time.Duration, log logger.Logger) *CachedProvider {
	if key == "" {
		key = DefaultCacheKey
	}
	return &CachedProvider{
		next:   next,
		redis:  rdb,
		key:    key,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-cache"}),
	}
}

func (c *CachedProvider) Snapshot(ctx context.Context) ([]models.TemplateRecord, error) {
	val, err := c.redis.Get(ctx, c.key).Result()
	switch {
	case err == nil:
		var templates []models.TemplateRecord
		if jerr := json.Unmarshal([]byte(val), &templates); jerr == nil {
			metrics.CatalogCacheLookups.WithLabelValues("hit").Inc()
			return templates, nil
		}
		c.logger.Warn("discarding undecodable catalog cache entry", map[string]interface{}{"key": c.key})
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
	case err == redis.Nil:
		metrics.CatalogCacheLookups.WithLabelValues("miss").Inc()
	default:
		c.logger.Warn("catalog cache read failed", map[string]interface{}{"key": c.key, "error": err.Error()})
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
	}

	templates, err := c.next.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(templates)
	if err != nil {
		return templates, nil
	}
	if err := c.redis.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", map[string]interface{}{"key": c.key, "error": err.Error()})
	}
	return templates, nil
}

// Invalidate drops the cached snapshot so the next call reloads from next.
func (c *CachedProvider) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, c.key).Err()
}
