package settler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/metrics"
	"github.com/foresight-hq/foresight-settler/pkg/models"
)

var errGatewayDown = errors.New("matching gateway is offline")

// processIntent runs exactly one submission cycle for an intent: claim the
// in-flight slot, convert, submit, and record the outcome. The slot is
// released on every exit path; that single guarantee is what keeps the
// overlapping poller, sweeper and drain dispatches from double-submitting.
func (s *Service) processIntent(ctx context.Context, intent *models.Intent) {
	if !s.registry.MarkProcessing(intent.ID) {
		s.logger.DebugWithComp(logger.Processor, "Intent %s already has an attempt in flight, skipping", intent.ID)
		return
	}
	metrics.InflightProcessors.Set(float64(s.registry.InFlight()))
	defer func() {
		s.registry.ClearProcessing(intent.ID)
		metrics.InflightProcessors.Set(float64(s.registry.InFlight()))
	}()

	// Do not burn a network call when the gateway is known to be down. The
	// health monitor re-dispatches everything parked here the moment the
	// gateway comes back, without the usual backoff penalty.
	if !s.monitor.IsOnline() {
		s.recordFailure(intent, models.FailGatewayUnavailable, errGatewayDown)
		return
	}

	order := s.convertIntent(intent)

	start := time.Now()
	submitCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	trades, err := s.matching.SubmitOrder(submitCtx, order)
	cancel()
	metrics.IntentProcessingTime.Observe(time.Since(start).Seconds())

	if err != nil {
		s.recordFailure(intent, classifyError(err), err)
		return
	}

	// Success consumes the intent: the matching side owns it from here, so
	// local bookkeeping is cleared before the completion notice goes out.
	s.registry.Remove(intent.ID)
	metrics.IntentsProcessed.WithLabelValues("success").Inc()
	s.logger.InfoWithComp(logger.Processor, "Intent %s matched as order %s with %d fills",
		intent.ID, order.OrderID, len(trades))

	for _, trade := range trades {
		s.settlement.Enqueue(models.PendingTrade{
			IntentID: trade.IntentID,
			TradeID:  trade.TradeID,
		})
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.notifySuccess(intent, order, trades)
	}()
}

// recordFailure books one failed attempt and schedules the next retry. The
// delay is derived from the attempt count before this failure, so the first
// retry waits the initial delay and later ones climb the backoff curve.
func (s *Service) recordFailure(intent *models.Intent, kind models.FailureKind, err error) {
	now := time.Now()

	rec, tracked := s.registry.Record(intent.ID)
	if !tracked {
		// Swept or completed while this attempt was in flight
		return
	}

	nextRetryAt := s.policy.NextRetryAt(now, rec.Attempts)
	attempts := s.registry.RecordFailure(intent.ID, kind, err.Error(), nextRetryAt)
	if attempts < 0 {
		return
	}

	metrics.IntentsProcessed.WithLabelValues("failed").Inc()
	metrics.ProcessingErrors.WithLabelValues(string(kind)).Inc()

	if kind == models.FailMalformedResponse {
		// Unparseable payloads may mean the matching engine's wire format
		// drifted; surface these at error level every time.
		s.logger.ErrorWithComp(logger.Processor, "Intent %s got malformed response (attempt %d/%d): %v",
			intent.ID, attempts, s.config.Retry.MaxAttempts, err)
	} else {
		s.logger.InfoWithComp(logger.Processor, "Intent %s failed as %s (attempt %d/%d), next retry at %s: %v",
			intent.ID, kind, attempts, s.config.Retry.MaxAttempts, nextRetryAt.Format(time.RFC3339), err)
	}
}

// notifySuccess posts the success completion for a matched intent. Best
// effort: the intent is already consumed on the matching side, so a failed
// notice is logged and counted but never re-opens the intent.
func (s *Service) notifySuccess(intent *models.Intent, order *models.Order, trades []models.Trade) {
	output := decimal.Zero
	for _, trade := range trades {
		amount, err := decimal.NewFromString(trade.Amount)
		if err != nil {
			s.logger.ErrorWithComp(logger.Processor, "Fill %s for intent %s has unparseable amount %q: %v",
				trade.TradeID, intent.ID, trade.Amount, err)
			continue
		}
		output = output.Add(amount)
	}

	completion := models.Completion{
		IntentID:     intent.ID,
		Success:      true,
		OutputAmount: output.String(),
		FeeAmount:    "0",
		Details:      fmt.Sprintf("order %s filled by %d trades", order.OrderID, len(trades)),
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := s.ledger.NotifyCompletion(ctx, completion); err != nil {
		s.logger.ErrorWithComp(logger.Processor, "Failed to post completion for intent %s: %v", intent.ID, err)
		metrics.CompletionErrors.Inc()
		return
	}
	metrics.CompletionNotices.WithLabelValues("success").Inc()
}
