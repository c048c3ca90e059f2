package settler

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/models"
)

func pendingTrade(n int) models.PendingTrade {
	return models.PendingTrade{
		IntentID: fmt.Sprintf("intent-%d", n),
		TradeID:  fmt.Sprintf("trade-%d", n),
	}
}

func TestQueueDrainsInOrder(t *testing.T) {
	q := NewQueue(10, nil, &logger.EmptyLogger{})

	for i := 0; i < 3; i++ {
		require.True(t, q.Enqueue(pendingTrade(i)))
	}
	require.Equal(t, 3, q.Depth())

	settled := q.Drain(10)
	assert.Equal(t, 3, settled)
	assert.Equal(t, 0, q.Depth())

	history := q.Settled()
	require.Len(t, history, 3)
	for i, trade := range history {
		assert.Equal(t, fmt.Sprintf("trade-%d", i), trade.TradeID)
	}
}

func TestQueueDropsAtCapacity(t *testing.T) {
	q := NewQueue(2, nil, &logger.EmptyLogger{})

	assert.True(t, q.Enqueue(pendingTrade(0)))
	assert.True(t, q.Enqueue(pendingTrade(1)))
	assert.False(t, q.Enqueue(pendingTrade(2)), "fill beyond capacity should be dropped")
	assert.Equal(t, 2, q.Depth())
}

func TestQueueRespectsDrainBudget(t *testing.T) {
	q := NewQueue(100, nil, &logger.EmptyLogger{})

	for i := 0; i < 15; i++ {
		require.True(t, q.Enqueue(pendingTrade(i)))
	}

	assert.Equal(t, 10, q.Drain(10))
	assert.Equal(t, 5, q.Depth())
	assert.Equal(t, 5, q.Drain(10))
	assert.Equal(t, 0, q.Depth())
}

func TestQueueDefersFailedCloseOut(t *testing.T) {
	var mu sync.Mutex
	failures := 1
	closeOut := func(trade models.PendingTrade) error {
		mu.Lock()
		defer mu.Unlock()
		if trade.TradeID == "trade-0" && failures > 0 {
			failures--
			return errors.New("bookkeeping backend busy")
		}
		return nil
	}

	q := NewQueue(10, closeOut, &logger.EmptyLogger{})
	require.True(t, q.Enqueue(pendingTrade(0)))
	require.True(t, q.Enqueue(pendingTrade(1)))

	// First drain settles trade-1 and defers trade-0
	assert.Equal(t, 1, q.Drain(10))
	assert.Equal(t, 1, q.Depth())

	// Second drain retries trade-0 successfully
	assert.Equal(t, 1, q.Drain(10))
	assert.Equal(t, 0, q.Depth())

	history := q.Settled()
	require.Len(t, history, 2)
	assert.Equal(t, "trade-1", history[0].TradeID)
	assert.Equal(t, "trade-0", history[1].TradeID)
	assert.Equal(t, 1, history[1].RetryCount, "deferred fill should carry its retry count")
}

func TestQueueDropsAfterCloseOutRetries(t *testing.T) {
	closeOut := func(trade models.PendingTrade) error {
		return errors.New("bookkeeping backend down")
	}

	q := NewQueue(10, closeOut, &logger.EmptyLogger{})
	require.True(t, q.Enqueue(pendingTrade(0)))

	// Three deferrals, then the retry budget is spent and the fill is dropped
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0, q.Drain(10))
		assert.Equal(t, 1, q.Depth())
	}
	assert.Equal(t, 0, q.Drain(10))
	assert.Equal(t, 0, q.Depth())
	assert.Empty(t, q.Settled())
}

func TestQueueHistoryIsBounded(t *testing.T) {
	q := NewQueue(settledHistorySize*2, nil, &logger.EmptyLogger{})

	for i := 0; i < settledHistorySize+10; i++ {
		require.True(t, q.Enqueue(pendingTrade(i)))
	}
	q.Drain(settledHistorySize + 10)

	history := q.Settled()
	require.Len(t, history, settledHistorySize)
	assert.Equal(t, fmt.Sprintf("trade-%d", 10), history[0].TradeID, "oldest entries should be evicted first")
}
