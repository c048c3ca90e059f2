package querycache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foresight-hq/foresight-settler/pkg/backoff"
	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/matching"
	"github.com/foresight-hq/foresight-settler/pkg/models"
)

func testPolicy(initial, max time.Duration) backoff.Policy {
	return backoff.Policy{
		InitialDelay: initial,
		MaxDelay:     max,
		Factor:       2.0,
	}
}

func TestLookupServesFreshValue(t *testing.T) {
	cache := New(time.Minute, testPolicy(time.Second, 30*time.Second), &logger.EmptyLogger{})

	calls := 0
	price := &models.PriceData{MarketID: "0xmkt1", Outcome: 1, BestBid: 54000, BestAsk: 56000}
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return price, nil
	}

	key := Key("price", "0xmkt1", 1)

	got, err := cache.Lookup(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, price, got)
	assert.Equal(t, 1, calls)

	// Second lookup inside the TTL is served from the cache
	got, err = cache.Lookup(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, price, got)
	assert.Equal(t, 1, calls)
}

func TestLookupNotFoundIsSuccessfulEmpty(t *testing.T) {
	cache := New(time.Minute, testPolicy(time.Second, 30*time.Second), &logger.EmptyLogger{})

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, fmt.Errorf("price query: %w", matching.ErrNotFound)
	}

	key := Key("price", "0xnewmarket", 0)

	got, err := cache.Lookup(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, calls)

	// The empty result is cached with success semantics: no backoff, no
	// second live call inside the TTL
	got, err = cache.Lookup(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, calls)
}

func TestLookupServesStaleUnderBackoff(t *testing.T) {
	// Tiny TTL so the first value goes stale immediately, long backoff so
	// the failed refresh parks the key for the rest of the test
	cache := New(20*time.Millisecond, testPolicy(time.Minute, time.Minute), &logger.EmptyLogger{})

	calls := 0
	failing := false
	price := &models.PriceData{MarketID: "0xmkt1", Outcome: 0, LastPrice: 42000}
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		if failing {
			return nil, errors.New("connection refused")
		}
		return price, nil
	}

	key := Key("price", "0xmkt1", 0)

	_, err := cache.Lookup(context.Background(), key, fetch)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	// Let the TTL lapse, then fail the refresh
	time.Sleep(50 * time.Millisecond)
	failing = true

	_, err = cache.Lookup(context.Background(), key, fetch)
	require.Error(t, err)
	require.Equal(t, 2, calls)

	// Inside the backoff window the stale value is served with no live call
	got, err := cache.Lookup(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, price, got)
	assert.Equal(t, 2, calls)
}

func TestLookupFailureWithoutDataShortCircuits(t *testing.T) {
	cache := New(time.Minute, testPolicy(time.Minute, time.Minute), &logger.EmptyLogger{})

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("connection refused")
	}

	key := Key("orderbook", "0xmkt1", 1)

	_, err := cache.Lookup(context.Background(), key, fetch)
	require.Error(t, err)
	require.Equal(t, 1, calls)

	// The failure is cached as an empty entry, repeated callers do not
	// hammer the failing endpoint
	got, err := cache.Lookup(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, calls)
}

func TestLookupRetriesAfterBackoffWindow(t *testing.T) {
	cache := New(10*time.Millisecond, testPolicy(20*time.Millisecond, 20*time.Millisecond), &logger.EmptyLogger{})

	calls := 0
	failing := true
	price := &models.PriceData{MarketID: "0xmkt1", Outcome: 1, LastPrice: 61000}
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		if failing {
			return nil, errors.New("connection refused")
		}
		return price, nil
	}

	key := Key("price", "0xmkt1", 1)

	_, err := cache.Lookup(context.Background(), key, fetch)
	require.Error(t, err)
	require.Equal(t, 1, calls)

	// Once the backoff window lapses and the endpoint recovers, the next
	// lookup refreshes the entry
	failing = false
	time.Sleep(60 * time.Millisecond)

	got, err := cache.Lookup(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, price, got)
	assert.Equal(t, 2, calls)
}

func TestInvalidateAndClear(t *testing.T) {
	cache := New(time.Minute, testPolicy(time.Second, time.Second), &logger.EmptyLogger{})

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return &models.PriceData{MarketID: "0xmkt1"}, nil
	}

	key := Key("price", "0xmkt1", 0)

	_, err := cache.Lookup(context.Background(), key, fetch)
	require.NoError(t, err)

	count, ttl := cache.Stats()
	assert.Equal(t, 1, count)
	assert.Equal(t, time.Minute, ttl)

	cache.Invalidate(key)
	count, _ = cache.Stats()
	assert.Equal(t, 0, count)

	// A fresh lookup after invalidation hits the fetcher again
	_, err = cache.Lookup(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	cache.Clear()
	count, _ = cache.Stats()
	assert.Equal(t, 0, count)
}
