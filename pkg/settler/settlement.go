package settler

import (
	"context"
	"sync"
	"time"

	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/metrics"
	"github.com/foresight-hq/foresight-settler/pkg/models"
)

const (
	defaultQueueCapacity = 1000
	// Close out at most this many fills per drain tick so a burst of fills
	// cannot monopolize the loop
	maxDrainPerTick    = 10
	settledHistorySize = 50
	maxCloseOutRetries = 3
)

// CloseOutFunc confirms one fill's settlement bookkeeping. An error defers
// the fill for a later drain tick.
type CloseOutFunc func(trade models.PendingTrade) error

// Queue is a bounded FIFO of fills awaiting settlement bookkeeping. The value
// transfer itself already happened inside the matching engine; this queue
// only tracks that each fill's close-out ran, and keeps a short history for
// the status endpoint.
type Queue struct {
	mu       sync.Mutex
	pending  []models.PendingTrade
	settled  []models.PendingTrade
	capacity int
	closeOut CloseOutFunc
	logger   logger.Logger
}

// NewQueue creates a settlement queue with the given capacity
func NewQueue(capacity int, closeOut CloseOutFunc, log logger.Logger) *Queue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &Queue{
		capacity: capacity,
		closeOut: closeOut,
		logger:   log,
	}
}

// Enqueue adds a fill to the queue. At capacity the fill is dropped and
// counted rather than blocking the processor that produced it.
func (q *Queue) Enqueue(trade models.PendingTrade) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) >= q.capacity {
		q.logger.ErrorWithComp(logger.Settlement, "Settlement queue at capacity (%d), dropping fill %s for intent %s",
			q.capacity, trade.TradeID, trade.IntentID)
		metrics.DroppedFills.Inc()
		return false
	}

	q.pending = append(q.pending, trade)
	metrics.SettlementQueueSize.Set(float64(len(q.pending)))
	return true
}

// Drain closes out up to max fills. Fills whose close-out fails are requeued
// with an incremented retry count until maxCloseOutRetries, then dropped.
// Returns the number of fills settled.
func (q *Queue) Drain(max int) int {
	q.mu.Lock()
	n := len(q.pending)
	if n > max {
		n = max
	}
	batch := make([]models.PendingTrade, n)
	copy(batch, q.pending[:n])
	q.pending = q.pending[n:]
	q.mu.Unlock()

	settledCount := 0
	for _, trade := range batch {
		if q.closeOut != nil {
			if err := q.closeOut(trade); err != nil {
				q.deferTrade(trade, err)
				continue
			}
		}
		settledCount++
		metrics.FillsSettled.Inc()
		q.recordSettled(trade)
	}

	q.mu.Lock()
	metrics.SettlementQueueSize.Set(float64(len(q.pending)))
	q.mu.Unlock()

	return settledCount
}

// deferTrade requeues a fill whose close-out failed, dropping it once the
// retry budget is spent
func (q *Queue) deferTrade(trade models.PendingTrade, err error) {
	trade.RetryCount++
	if trade.RetryCount > maxCloseOutRetries {
		q.logger.ErrorWithComp(logger.Settlement, "Dropping fill %s for intent %s after %d close-out attempts: %v",
			trade.TradeID, trade.IntentID, trade.RetryCount, err)
		metrics.DroppedFills.Inc()
		return
	}

	q.logger.DebugWithComp(logger.Settlement, "Deferring fill %s for intent %s (attempt %d): %v",
		trade.TradeID, trade.IntentID, trade.RetryCount, err)

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) >= q.capacity {
		metrics.DroppedFills.Inc()
		return
	}
	q.pending = append(q.pending, trade)
}

// recordSettled keeps a bounded, most-recent-last history of settled fills
func (q *Queue) recordSettled(trade models.PendingTrade) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.settled = append(q.settled, trade)
	if len(q.settled) > settledHistorySize {
		q.settled = q.settled[len(q.settled)-settledHistorySize:]
	}
}

// Depth returns the number of fills waiting to be closed out
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Settled returns a copy of the recent settled-fill history
func (q *Queue) Settled() []models.PendingTrade {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.PendingTrade, len(q.settled))
	copy(out, q.settled)
	return out
}

// settlementLoop drains the settlement queue on a fixed interval
func (s *Service) settlementLoop(ctx context.Context) {
	s.logger.InfoWithComp(logger.Settlement, "Settlement drain started with interval %v", settlementDrainInterval)
	ticker := time.NewTicker(settlementDrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoWithComp(logger.Settlement, "Settlement drain shutting down")
			return
		case <-ticker.C:
			if n := s.settlement.Drain(maxDrainPerTick); n > 0 {
				s.logger.DebugWithComp(logger.Settlement, "Closed out %d fills", n)
			}
		}
	}
}
