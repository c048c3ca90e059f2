package settler

import (
	"context"
	"fmt"
	"time"

	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/metrics"
	"github.com/foresight-hq/foresight-settler/pkg/models"
	"github.com/foresight-hq/foresight-settler/pkg/registry"
)

// sweeperLoop re-dispatches due retries and evicts exhausted intents on its
// own interval, independent of the poller's tick.
func (s *Service) sweeperLoop(ctx context.Context) {
	s.logger.InfoWithComp(logger.Sweeper, "Sweeper started with interval %v", s.config.SweepInterval)
	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoWithComp(logger.Sweeper, "Sweeper shutting down")
			return
		case <-ticker.C:
			s.sweepTick(ctx)
		}
	}
}

// sweepTick runs one retry pass and one expiry pass
func (s *Service) sweepTick(ctx context.Context) {
	now := time.Now()

	for _, intent := range s.registry.DueForRetry(now, s.config.Retry.MaxAttempts) {
		rec, tracked := s.registry.Record(intent.ID)
		if !tracked {
			continue
		}
		s.logger.InfoWithComp(logger.Sweeper, "Retrying intent %s (attempt %d/%d, last failure: %s)",
			intent.ID, rec.Attempts+1, s.config.Retry.MaxAttempts, rec.LastKind)
		metrics.RetriesExecuted.WithLabelValues(string(rec.LastKind)).Inc()
		s.dispatch(ctx, intent)
	}

	for _, abandoned := range s.registry.TakeExpired(now, s.config.Retry.MaxAttempts, s.config.IntentExpiry) {
		s.abandonIntent(ctx, abandoned)
	}
}

// abandonIntent reports a terminally failed intent back to the ledger. The
// registry entry is already gone by the time this runs; a failed notice is
// logged and counted but never resurrects the intent, since an abandoned
// intent must not block future processing.
func (s *Service) abandonIntent(ctx context.Context, abandoned registry.Abandoned) {
	rec := abandoned.Record
	s.logger.NoticeWithComp(logger.Sweeper, "Abandoning intent %s after %d attempts (%s), last error: %s",
		abandoned.Intent.ID, rec.Attempts, abandoned.Reason, rec.LastError)
	metrics.IntentsExpired.WithLabelValues(abandoned.Reason).Inc()

	completion := models.Completion{
		IntentID:  abandoned.Intent.ID,
		Success:   false,
		FeeAmount: "0",
		Details: fmt.Sprintf("abandoned after %d attempts (%s); last error: %s",
			rec.Attempts, abandoned.Reason, rec.LastError),
	}

	notifyCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := s.ledger.NotifyCompletion(notifyCtx, completion); err != nil {
		s.logger.ErrorWithComp(logger.Sweeper, "Failed to post failure completion for intent %s: %v",
			abandoned.Intent.ID, err)
		metrics.CompletionErrors.Inc()
		return
	}
	metrics.CompletionNotices.WithLabelValues("failure").Inc()
}
