// Package cachemanager provides TTL caches keyed by string.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a string-keyed cache of V values.
type CacheManager[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...string) error
	Flush(ctx context.Context) error
}
