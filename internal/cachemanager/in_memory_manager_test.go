package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Rev  int
	Text string
}

func TestInMemoryCacheManager_StructValue(t *testing.T) {
	cache := NewInMemoryCacheManager[snapshot]("sheet-text", DefaultExpiration, DefaultCleanupInterval)
	want := snapshot{Rev: 3, Text: "a,b"}
	cache.Set(context.Background(), "s:3", want, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "s:3")
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestInMemoryCacheManager_Miss(t *testing.T) {
	cache := NewInMemoryCacheManager[string]("sheet-text", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "missing")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expires(t *testing.T) {
	cache := NewInMemoryCacheManager[string]("sheet-text", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "k", "v", time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string]("sheet-text", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)
	cache.Set(ctx, "c", "3", DefaultExpiration)

	require.NoError(t, cache.Delete(ctx, "a", "missing"))
	require.Equal(t, 2, cache.Len())

	require.NoError(t, cache.Flush(ctx))
	require.Equal(t, 0, cache.Len())
}
