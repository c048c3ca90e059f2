// Package querycache caches read-only matching engine queries. Entries carry
// their own refresh backoff state so a failing endpoint is probed at most once
// per backoff window while callers keep getting the last known value.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/foresight-hq/foresight-settler/pkg/backoff"
	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/matching"
	"github.com/foresight-hq/foresight-settler/pkg/metrics"
)

// Fetcher performs the live call backing a cache key
type Fetcher func(ctx context.Context) (interface{}, error)

// entry is a cached query result with its refresh backoff state
type entry struct {
	data        interface{}
	timestamp   time.Time
	attempts    int
	nextRetryAt time.Time
}

// Cache manages cached query results to avoid duplicate matching engine calls
type Cache struct {
	mu     sync.Mutex
	cache  map[string]*entry
	ttl    time.Duration
	policy backoff.Policy
	logger logger.Logger
}

// New creates a new query cache
func New(ttl time.Duration, policy backoff.Policy, log logger.Logger) *Cache {
	return &Cache{
		cache:  make(map[string]*entry),
		ttl:    ttl,
		policy: policy,
		logger: log,
	}
}

// Key builds the cache key for a query type, market and outcome
func Key(queryType, marketID string, outcome uint8) string {
	return fmt.Sprintf("%s:%s:%d", queryType, marketID, outcome)
}

// Lookup returns the value for key, refreshing it with fetch when needed.
//
// Inside a failing key's backoff window the last known value is served even
// if stale, so callers never block on a dependency that is known to be down.
// Within the TTL the cached value is served. Otherwise fetch runs: a 404 is
// stored as a successful empty result (a brand-new market simply has no data
// yet), any other failure extends the backoff window and keeps whatever data
// the entry already had. The error of a failed live call is returned to the
// caller that triggered it; callers inside the backoff window get the cached
// value with no error.
func (c *Cache) Lookup(ctx context.Context, key string, fetch Fetcher) (interface{}, error) {
	c.mu.Lock()
	now := time.Now()
	if e, exists := c.cache[key]; exists {
		// In backoff window: serve whatever we have, even stale
		if now.Before(e.nextRetryAt) {
			data := e.data
			c.mu.Unlock()
			metrics.CacheHits.WithLabelValues("stale").Inc()
			return data, nil
		}
		// Fresh within TTL
		if now.Sub(e.timestamp) < c.ttl {
			data := e.data
			c.mu.Unlock()
			metrics.CacheHits.WithLabelValues("fresh").Inc()
			return data, nil
		}
	}
	c.mu.Unlock()

	metrics.CacheMisses.Inc()

	data, err := fetch(ctx)
	if err != nil && errors.Is(err, matching.ErrNotFound) {
		// A 404 on a read is a valid empty result, not a fault
		c.logger.DebugWithComp(logger.Cache, "No data for %s, caching empty result", key)
		c.store(key, nil)
		return nil, nil
	}
	if err != nil {
		attempts, nextRetryAt := c.recordFailure(key)
		c.logger.ErrorWithComp(logger.Cache, "Refresh failed for %s (attempt %d, next retry %s): %v",
			key, attempts, nextRetryAt.Format(time.RFC3339), err)
		return nil, err
	}

	c.store(key, data)
	return data, nil
}

// store records a successful result and clears any backoff state
func (c *Cache) store(key string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = &entry{
		data:      data,
		timestamp: time.Now(),
	}
}

// recordFailure extends the backoff window for key. Existing data is kept for
// stale serving; a key that never had data gets an empty entry so repeated
// callers short-circuit instead of hammering the failing endpoint.
func (c *Cache) recordFailure(key string) (int, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	e, exists := c.cache[key]
	if !exists {
		e = &entry{}
		c.cache[key] = e
	}

	e.nextRetryAt = c.policy.NextRetryAt(now, e.attempts)
	e.attempts++

	return e.attempts, e.nextRetryAt
}

// Invalidate drops a single cache entry
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
}

// Clear removes all cached entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*entry)
}

// Stats returns the number of cached entries and the freshness window
func (c *Cache) Stats() (int, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.cache), c.ttl
}
