package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type listKey string

type snapshotRow struct {
	ID    string
	Lines int
}

func newSnapshotCache() *InMemoryCacheManager[listKey, []snapshotRow] {
	return NewInMemoryCacheManager[listKey, []snapshotRow]("history", DefaultExpiration, DefaultCleanupInterval)
}

func TestInMemoryCacheManager_GetExistingValue(t *testing.T) {
	cache := newSnapshotCache()
	rows := []snapshotRow{{ID: "a", Lines: 3}}
	cache.Set(context.Background(), "list:10", rows, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "list:10")
	require.True(t, ok)
	require.Equal(t, rows, got)
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := newSnapshotCache()

	got, ok := cache.Get(context.Background(), "list:10")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestInMemoryCacheManager_GetWrongType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("count", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "count")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := newSnapshotCache()
	cache.Set(ctx, "list:1", []snapshotRow{{ID: "a"}}, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(ctx, "list:1")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	ctx := context.Background()
	cache := newSnapshotCache()
	cache.Set(ctx, "list:1", []snapshotRow{{ID: "a"}}, DefaultExpiration)
	cache.Set(ctx, "list:all", []snapshotRow{{ID: "a"}, {ID: "b"}}, DefaultExpiration)

	require.NoError(t, cache.Flush(ctx))
	for _, k := range []listKey{"list:1", "list:all"} {
		_, ok := cache.Get(ctx, k)
		require.False(t, ok, k)
	}
}
