// Package settler contains the intent settlement orchestrator: the polling,
// retry, expiry and health loops that move trading intents from the on-chain
// intent book through the matching engine and report the results back.
package settler

import (
	"context"
	"sync"
	"time"

	"github.com/foresight-hq/foresight-settler/pkg/backoff"
	"github.com/foresight-hq/foresight-settler/pkg/config"
	"github.com/foresight-hq/foresight-settler/pkg/gatewaymon"
	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/metrics"
	"github.com/foresight-hq/foresight-settler/pkg/models"
	"github.com/foresight-hq/foresight-settler/pkg/registry"
)

const (
	// Per-call ceiling for external I/O so a hung dependency cannot stall a loop
	submitTimeout = 10 * time.Second
	probeTimeout  = 10 * time.Second
	notifyTimeout = 10 * time.Second

	// Orders without an on-chain deadline rest on the book for one hour
	defaultOrderHorizon = time.Hour

	settlementDrainInterval = 5 * time.Second
	recoveryInterval        = 30 * time.Minute
)

// LedgerGateway is the on-chain side of the orchestrator: it supplies pending
// intents and accepts completion notices.
type LedgerGateway interface {
	PendingIntentIDs(ctx context.Context) ([]string, error)
	GetIntent(ctx context.Context, intentID string) (*models.Intent, error)
	NotifyCompletion(ctx context.Context, completion models.Completion) error
}

// MatchingGateway is the off-chain side: the order-matching engine that
// executes orders and reports fills.
type MatchingGateway interface {
	Health(ctx context.Context) error
	SubmitOrder(ctx context.Context, order *models.Order) ([]models.Trade, error)
}

// TransactionRecoverer is implemented by ledger gateways that track in-flight
// settlement transactions and can recover stuck ones.
type TransactionRecoverer interface {
	RecoverStuckTransactions(ctx context.Context)
}

// Service wires the poller, processor, sweeper, health monitor and settlement
// queue together around the shared intent registry.
type Service struct {
	config     *config.Config
	ledger     LedgerGateway
	matching   MatchingGateway
	registry   *registry.Registry
	monitor    *gatewaymon.Monitor
	policy     backoff.Policy
	settlement *Queue
	logger     logger.Logger
	wg         sync.WaitGroup
	sem        chan struct{} // nil when MAX_INFLIGHT is unset
}

// NewService creates the orchestrator around the given gateways
func NewService(cfg *config.Config, ledgerGateway LedgerGateway, matchingGateway MatchingGateway, log logger.Logger) *Service {
	s := &Service{
		config:   cfg,
		ledger:   ledgerGateway,
		matching: matchingGateway,
		registry: registry.New(),
		monitor:  gatewaymon.NewMonitor(),
		policy:   cfg.RetryPolicy(),
		logger:   log,
	}
	s.settlement = NewQueue(defaultQueueCapacity, func(trade models.PendingTrade) error {
		log.DebugWithComp(logger.Settlement, "Fill %s for intent %s confirmed", trade.TradeID, trade.IntentID)
		return nil
	}, log)

	if cfg.MaxInflight > 0 {
		s.sem = make(chan struct{}, cfg.MaxInflight)
	}
	return s
}

// Registry exposes the intent registry for status reporting
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Monitor exposes the gateway health monitor for status reporting
func (s *Service) Monitor() *gatewaymon.Monitor {
	return s.monitor
}

// Settlement exposes the settlement queue for status reporting
func (s *Service) Settlement() *Queue {
	return s.settlement
}

// DrainParked forces the gateway-recovery drain: every intent parked on a
// gateway-unavailable failure gets a fresh schedule and an immediate dispatch.
// Used by the admin endpoint; the health monitor runs the same drain on the
// offline to online edge.
func (s *Service) DrainParked(ctx context.Context) int {
	drained := s.registry.ResetGatewayParked(time.Now())
	metrics.DrainedIntents.Add(float64(len(drained)))
	for _, intent := range drained {
		s.dispatch(ctx, intent)
	}
	return len(drained)
}

// Start runs the orchestrator until the context is cancelled. The poll loop
// runs in the foreground; sweeper, health monitor and settlement drain run as
// goroutines. On shutdown, in-flight processor calls are allowed to finish
// naturally before Start returns.
func (s *Service) Start(ctx context.Context) {
	s.logger.Info("Starting settlement service with polling interval %v", s.config.PollingInterval)

	go s.sweeperLoop(ctx)
	go s.healthLoop(ctx)
	go s.settlementLoop(ctx)

	if recoverer, ok := s.ledger.(TransactionRecoverer); ok {
		go s.recoveryLoop(ctx, recoverer)
	}

	s.pollLoop(ctx)

	s.logger.Info("Waiting for in-flight processors to finish")
	s.wg.Wait()
	s.logger.Info("Settlement service stopped")
}

// dispatch hands an intent to the processor on its own goroutine. The
// processing-state guard inside processIntent makes concurrent dispatches of
// the same intent collapse into a single attempt, so the poller, sweeper and
// drain paths can all call this without coordinating.
func (s *Service) dispatch(ctx context.Context, intent *models.Intent) {
	if s.registry.IsProcessing(intent.ID) {
		return
	}

	if s.sem == nil {
		s.logger.DebugWithComp(logger.Processor, "Dispatching intent %s (%d calls in flight)",
			intent.ID, s.registry.InFlight())
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if s.sem != nil {
			select {
			case s.sem <- struct{}{}:
				defer func() { <-s.sem }()
			case <-ctx.Done():
				return
			}
		}
		s.processIntent(ctx, intent)
	}()
}

// recoveryLoop periodically asks the ledger gateway to recover settlement
// transactions that never confirmed, so their nonces can be reused.
func (s *Service) recoveryLoop(ctx context.Context, recoverer TransactionRecoverer) {
	s.logger.InfoWithComp(logger.Ledger, "Transaction recovery job started")
	ticker := time.NewTicker(recoveryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoWithComp(logger.Ledger, "Transaction recovery job shutting down")
			return
		case <-ticker.C:
			recoverer.RecoverStuckTransactions(ctx)
		}
	}
}
