package settler

import (
	"context"
	"time"

	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/metrics"
)

// healthLoop probes the matching gateway on a fixed interval and reacts to
// availability transitions.
func (s *Service) healthLoop(ctx context.Context) {
	s.logger.InfoWithComp(logger.Health, "Health monitor started with interval %v", s.config.HealthInterval)
	ticker := time.NewTicker(s.config.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoWithComp(logger.Health, "Health monitor shutting down")
			return
		case <-ticker.C:
			s.probeTick(ctx)
		}
	}
}

// probeTick runs one health probe. On the offline to online edge, every
// intent parked on a gateway-unavailable failure gets its attempts reset and
// an immediate dispatch, so an outage does not cost the full backoff penalty
// once the gateway recovers. All other failure kinds keep their schedule.
func (s *Service) probeTick(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := s.matching.Health(probeCtx)
	cancel()

	if err != nil {
		metrics.GatewayUp.Set(0)
		if s.monitor.RecordFailure() {
			s.logger.ErrorWithComp(logger.Health, "Matching gateway went offline: %v", err)
		}
		return
	}

	metrics.GatewayUp.Set(1)
	if !s.monitor.RecordSuccess() {
		return
	}

	s.logger.NoticeWithComp(logger.Health, "Matching gateway back online, draining parked intents")
	metrics.GatewayRecoveries.Inc()

	drained := s.registry.ResetGatewayParked(time.Now())
	metrics.DrainedIntents.Add(float64(len(drained)))

	for _, intent := range drained {
		s.dispatch(ctx, intent)
	}

	if len(drained) > 0 {
		s.logger.InfoWithComp(logger.Health, "Re-dispatched %d gateway-parked intents", len(drained))
	}
}
