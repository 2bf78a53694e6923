package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Dhrubajit-says/FormForge/internal/config"
	"github.com/Dhrubajit-says/FormForge/internal/model"
)

// SharedTemplateCache keeps the respondent view of templates so share-link
// traffic does not hit Postgres.
type SharedTemplateCache struct {
	cache *RedisCache
	ttl   time.Duration
}

// NewSharedTemplateCache creates a new SharedTemplateCache.
func NewSharedTemplateCache(cache *RedisCache, ttl time.Duration) *SharedTemplateCache {
	return &SharedTemplateCache{cache: cache, ttl: ttl}
}

// Get returns the cached view, or nil on a miss.
func (c *SharedTemplateCache) Get(ctx context.Context, id uuid.UUID) (*model.SharedTemplate, error) {
	var view model.SharedTemplate
	err := c.cache.Get(ctx, config.CacheKey.SharedTemplateKey(id.String()), &view)
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Set stores the view.
func (c *SharedTemplateCache) Set(ctx context.Context, view *model.SharedTemplate) error {
	return c.cache.Set(ctx, config.CacheKey.SharedTemplateKey(view.ID.String()), view, c.ttl)
}

// Delete drops the view after the template changes.
func (c *SharedTemplateCache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.cache.Delete(ctx, config.CacheKey.SharedTemplateKey(id.String()))
}
