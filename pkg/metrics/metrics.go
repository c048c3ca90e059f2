package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	IntentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_intents_processed_total",
		Help: "The total number of processed intents by result",
	}, []string{"result"})

	IntentProcessingTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "settler_intent_processing_seconds",
		Help:    "Time taken to process intents",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // Start at 100ms with 10 buckets doubling in size
	})

	PendingIntents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "settler_pending_intents",
		Help: "The number of pending intents the ledger reported on the last poll",
	})

	TrackedIntents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "settler_tracked_intents",
		Help: "The number of intents currently tracked by the registry",
	})

	InflightProcessors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "settler_inflight_processors",
		Help: "The number of processor calls currently in flight",
	})

	ProcessingErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_errors_total",
		Help: "Total number of processing errors by type",
	}, []string{"error_type"})

	// Retry related metrics
	RetriesExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_retries_executed_total",
		Help: "Number of retries that were dispatched",
	}, []string{"error_type"})

	RetriesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_retries_skipped_total",
		Help: "Number of retries that were skipped",
	}, []string{"reason"})

	IntentsExpired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_intents_expired_total",
		Help: "Number of intents abandoned terminally",
	}, []string{"reason"})

	CompletionNotices = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_completion_notices_total",
		Help: "Number of completion notices posted to the ledger",
	}, []string{"result"})

	CompletionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_completion_errors_total",
		Help: "Number of completion notices that failed to post",
	})

	// Gateway health metrics
	GatewayUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "settler_gateway_up",
		Help: "Whether the matching gateway is currently reachable (1) or not (0)",
	})

	GatewayRecoveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_gateway_recoveries_total",
		Help: "Number of offline to online transitions observed",
	})

	DrainedIntents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_drained_intents_total",
		Help: "Number of gateway-parked intents re-dispatched after recovery",
	})

	// Settlement queue metrics
	SettlementQueueSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "settler_settlement_queue_size",
		Help: "Current depth of the settlement queue",
	})

	FillsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_fills_settled_total",
		Help: "Number of fills whose settlement bookkeeping was closed out",
	})

	DroppedFills = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_fills_dropped_total",
		Help: "Number of fills dropped due to settlement queue capacity",
	})

	// Query cache metrics
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_cache_hits_total",
		Help: "Query cache hits by freshness",
	}, []string{"freshness"})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_cache_misses_total",
		Help: "Query cache misses that triggered a live call",
	})

	// Ledger metrics
	ChainHead = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "settler_chain_head_block",
		Help: "Latest block number observed on the ledger",
	})

	LedgerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_ledger_errors_total",
		Help: "Number of ledger call failures by operation",
	}, []string{"op"})
)
