package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache computes missing values with fn and stores them.
type ReadThroughCache[V any, I any] struct {
	cache CacheManager[V]
	fn    func(ctx context.Context, input I) (V, error)
}

func NewReadThroughCache[V any, I any](
	cache CacheManager[V],
	fn func(ctx context.Context, input I) (V, error),
) *ReadThroughCache[V, I] {
	return &ReadThroughCache[V, I]{
		cache: cache,
		fn:    fn,
	}
}

// Get returns the cached value for key, computing it from input on a miss.
// A nil cache always computes.
func (r *ReadThroughCache[V, I]) Get(ctx context.Context, key string, input I, ttl time.Duration) (V, error) {
	if r.cache == nil {
		return r.fn(ctx, input)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	value, err := r.fn(ctx, input)
	if err != nil {
		return value, err
	}

	r.cache.Set(ctx, key, value, ttl)
	return value, nil
}

// Forget drops key from the underlying cache.
func (r *ReadThroughCache[V, I]) Forget(ctx context.Context, key string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, key)
}
