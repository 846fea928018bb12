package cache

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ToolCache, *time.Time) {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := New(time.Minute)
	cache.now = func() time.Time { return now }

	return cache, &now
}

func TestToolCache_HitReturnsSameValue(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct{ n int }
	stored := &payload{n: 42}

	calls := 0
	fetcher := func(context.Context) (any, error) {
		calls++

		return stored, nil
	}

	first, err := cache.GetOrFetch(ctx, "menu:abc", time.Minute, fetcher)
	require.NoError(t, err)

	second, err := cache.GetOrFetch(ctx, "menu:abc", time.Minute, fetcher)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Same(t, stored, first.(*payload))
	assert.Same(t, first.(*payload), second.(*payload))
}

func TestToolCache_MissInvokesFetcher(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetcher := func(context.Context) (any, error) {
		calls++

		return calls, nil
	}

	_, err := cache.GetOrFetch(ctx, "a", time.Minute, fetcher)
	require.NoError(t, err)
	_, err = cache.GetOrFetch(ctx, "b", time.Minute, fetcher)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 2, stats.Entries)
}

func TestToolCache_FetcherErrorNotCached(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	boom := errors.New("upstream down")
	calls := 0
	fetcher := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}

		return "ok", nil
	}

	_, err := cache.GetOrFetch(ctx, "k", time.Minute, fetcher)
	require.ErrorIs(t, err, boom)

	value, err := cache.GetOrFetch(ctx, "k", time.Minute, fetcher)
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Equal(t, 2, calls)
}

func TestToolCache_ExpiryRefetches(t *testing.T) {
	cache, now := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetcher := func(context.Context) (any, error) {
		calls++

		return calls, nil
	}

	value, err := cache.GetOrFetch(ctx, "k", time.Minute, fetcher)
	require.NoError(t, err)
	assert.Equal(t, 1, value)

	// Advance past the TTL; the stale entry is dropped on read.
	*now = now.Add(time.Minute + time.Second)

	value, err = cache.GetOrFetch(ctx, "k", time.Minute, fetcher)
	require.NoError(t, err)
	assert.Equal(t, 2, value)
	assert.Equal(t, 2, calls)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Evictions)
}

func TestToolCache_InvalidatePrefix(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Set("menu:r1", 1, time.Minute)
	cache.Set("menu:r2", 2, time.Minute)
	cache.Set("search:q", 3, time.Minute)

	removed := cache.InvalidatePrefix("menu:")
	assert.Equal(t, 2, removed)

	_, ok := cache.Get("menu:r1")
	assert.False(t, ok)
	_, ok = cache.Get("search:q")
	assert.True(t, ok)
}

func TestToolCache_InvalidatePattern(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Set("menu:r1", 1, time.Minute)
	cache.Set("menu:r2", 2, time.Minute)
	cache.Set("product:p9", 3, time.Minute)

	removed := cache.InvalidatePattern(regexp.MustCompile(`^menu:r\d+$`))
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, cache.Stats().Entries)
}

func TestToolCache_DeleteAndStats(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Set("k", "v", time.Minute)
	assert.True(t, cache.Delete("k"))
	assert.False(t, cache.Delete("k"))

	_, ok := cache.Get("k")
	assert.False(t, ok)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0, stats.Entries)
}

func TestToolCache_ZeroTTLUsesDefault(t *testing.T) {
	cache, now := newTestCache(t)

	cache.Set("k", "v", 0)

	*now = now.Add(30 * time.Second)
	_, ok := cache.Get("k")
	assert.True(t, ok)

	*now = now.Add(31 * time.Second)
	_, ok = cache.Get("k")
	assert.False(t, ok)
}
