package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oneday-english/oneday/internal/platform/cache"
)

// Cached decorates a Catalog with a Redis cache. Cache failures degrade to
// the inner catalog and never fail the request.
type Cached struct {
	inner Catalog
	cache *cache.Cache
	ttl   time.Duration
}

// NewCached wraps inner with a Redis-backed item cache.
func NewCached(inner Catalog, c *cache.Cache, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: c, ttl: ttl}
}

func (c *Cached) Items(ctx context.Context, typ ActivityType, level int) ([]Item, error) {
	key := fmt.Sprintf("catalog:%s:%d", typ, level)

	var cached []Item
	err := c.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("catalog cache read failed", "key", key, "error", err)
	}

	items, err := c.inner.Items(ctx, typ, level)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetJSON(ctx, key, items, c.ttl); err != nil {
		slog.Warn("catalog cache write failed", "key", key, "error", err)
	}
	return items, nil
}
