package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/csvedit/internal/log"
)

const DefaultExpiration = 10 * time.Minute
const DefaultCleanupInterval = 30 * time.Minute

// NewInMemoryCacheManager creates a go-cache backed manager. useCase labels log lines.
func NewInMemoryCacheManager[V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[V] {
	return &InMemoryCacheManager[V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// InMemoryCacheManager is the process-local CacheManager.
type InMemoryCacheManager[V any] struct {
	useCase string
	cache   *gocache.Cache
}

var _ CacheManager[string] = (*InMemoryCacheManager[string])(nil)

// Get retrieves an item from the cache by its key
func (c *InMemoryCacheManager[V]) Get(_ context.Context, key string) (V, bool) {
	var zeroValue V

	value, found := c.cache.Get(key)
	if !found {
		return zeroValue, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "cache", c.useCase, "key", key)
		return zeroValue, false
	}

	log.Debug(log.CatCache, "cache hit", "cache", c.useCase, "key", key)
	return v, true
}

// Set stores value under key for ttl.
func (c *InMemoryCacheManager[V]) Set(_ context.Context, key string, value V, ttl time.Duration) {
	c.cache.Set(key, value, ttl)
}

// Delete removes keys. Missing keys are ignored.
func (c *InMemoryCacheManager[V]) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.cache.Delete(key)
	}
	return nil
}

// Flush empties the cache.
func (c *InMemoryCacheManager[V]) Flush(_ context.Context) error {
	c.cache.Flush()
	return nil
}

// Len reports how many unexpired items are stored.
func (c *InMemoryCacheManager[V]) Len() int {
	return c.cache.ItemCount()
}
