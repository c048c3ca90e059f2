package settler

import (
	"context"
	"errors"
	"time"

	"github.com/foresight-hq/foresight-settler/pkg/ledger"
	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/metrics"
)

// pollLoop asks the ledger for pending intents on a fixed interval
func (s *Service) pollLoop(ctx context.Context) {
	s.logger.InfoWithComp(logger.Poller, "Poller started with interval %v", s.config.PollingInterval)
	ticker := time.NewTicker(s.config.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoWithComp(logger.Poller, "Poller shutting down")
			return
		case <-ticker.C:
			s.pollTick(ctx)
		}
	}
}

// pollTick runs one poll cycle: fetch the pending intent ids, resolve the ones
// we have not seen before, and dispatch everything that is new or due for a
// retry. A failure fetching the id list abandons the whole tick; no partial
// state is written, so the next tick starts from scratch.
func (s *Service) pollTick(ctx context.Context) {
	ids, err := s.ledger.PendingIntentIDs(ctx)
	if err != nil {
		s.logger.ErrorWithComp(logger.Poller, "Failed to fetch pending intents, abandoning tick: %v", err)
		return
	}
	metrics.PendingIntents.Set(float64(len(ids)))

	if len(ids) > 0 {
		s.logger.DebugWithComp(logger.Poller, "Ledger reports %d pending intents", len(ids))
	}

	now := time.Now()
	dispatched := 0

	for _, id := range ids {
		if rec, known := s.registry.Record(id); known {
			// Already tracked: dispatch only when the backoff window has
			// elapsed. The sweeper covers the same ground on its own
			// interval; the processing-state guard keeps the overlap safe.
			switch {
			case rec.Attempts >= s.config.Retry.MaxAttempts:
				metrics.RetriesSkipped.WithLabelValues("exhausted").Inc()
			case now.Before(rec.NextRetryAt):
				metrics.RetriesSkipped.WithLabelValues("backoff").Inc()
			case s.registry.IsProcessing(id):
				metrics.RetriesSkipped.WithLabelValues("in_flight").Inc()
			default:
				if intent, ok := s.registry.Get(id); ok {
					s.dispatch(ctx, intent)
					dispatched++
				}
			}
			continue
		}

		intent, err := s.ledger.GetIntent(ctx, id)
		if err != nil {
			if errors.Is(err, ledger.ErrIntentNotFound) {
				// Ordering race with the ledger: the id showed up in the
				// pending set before the record itself was readable.
				s.logger.DebugWithComp(logger.Poller, "Intent %s not resolvable yet, retrying next tick", id)
			} else {
				s.logger.ErrorWithComp(logger.Poller, "Failed to resolve intent %s: %v", id, err)
			}
			continue
		}

		if s.registry.Track(intent, now) {
			s.logger.InfoWithComp(logger.Poller, "Tracking new intent %s (%s %s on market %s)",
				intent.ID, intent.Kind, intent.Amount, intent.MarketID)
			s.dispatch(ctx, intent)
			dispatched++
		}
	}

	metrics.TrackedIntents.Set(float64(s.registry.Stats().Tracked))

	if dispatched > 0 {
		s.logger.InfoWithComp(logger.Poller, "Dispatched %d intents for processing", dispatched)
	}
}
