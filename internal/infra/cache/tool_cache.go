// Package cache implements the in-process TTL memoization cache used
// by agent tools and the catalog proxy hot path.
package cache

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"canopy/internal/infra/metrics"
)

// Fetcher loads a value on a cache miss.
type Fetcher func(ctx context.Context) (any, error)

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}

type entry struct {
	value     any
	expiresAt time.Time
}

// ToolCache is a key→value cache with per-call TTLs and lazy expiry on
// read. There is deliberately no cross-fetch locking: concurrent misses
// on the same key both invoke the fetcher and the last write wins.
type ToolCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	hits      int64
	misses    int64
	evictions int64

	defaultTTL time.Duration
	now        func() time.Time
}

// New creates a ToolCache. defaultTTL applies when GetOrFetch receives
// a non-positive TTL.
func New(defaultTTL time.Duration) *ToolCache {
	return &ToolCache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the cached value for key, when present and unexpired.
func (c *ToolCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.getLocked(key)
}

func (c *ToolCache) getLocked(key string) (any, bool) {
	ent, ok := c.entries[key]
	if !ok {
		c.misses++
		metrics.ToolCacheMissesTotal.Inc()

		return nil, false
	}

	if c.now().After(ent.expiresAt) {
		// Lazy expiry: drop the stale entry on read.
		delete(c.entries, key)
		c.evictions++
		c.misses++
		metrics.ToolCacheMissesTotal.Inc()

		return nil, false
	}

	c.hits++
	metrics.ToolCacheHitsTotal.Inc()

	return ent.value, true
}

// Set stores value under key for the given TTL.
func (c *ToolCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

// Delete removes key, reporting whether it was present.
func (c *ToolCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	delete(c.entries, key)

	return ok
}

// GetOrFetch returns the cached value for key or invokes fetcher and
// caches its result for ttl.
func (c *ToolCache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetcher Fetcher) (any, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := fetcher(ctx)
	if err != nil {
		return nil, err
	}

	c.Set(key, value, ttl)

	return value, nil
}

// InvalidatePrefix removes every key starting with prefix and returns
// the number removed.
func (c *ToolCache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	c.evictions += int64(removed)

	return removed
}

// InvalidatePattern removes every key matching the regular expression
// and returns the number removed.
func (c *ToolCache) InvalidatePattern(pattern *regexp.Regexp) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if pattern.MatchString(key) {
			delete(c.entries, key)
			removed++
		}
	}
	c.evictions += int64(removed)

	return removed
}

// Stats returns a snapshot of hit/miss/eviction counters and the
// current entry count (expired-but-unread entries included).
func (c *ToolCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   len(c.entries),
	}
}
