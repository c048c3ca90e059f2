package models

import (
	"time"
)

// FailureKind classifies why an intent submission failed
type FailureKind string

const (
	// FailTransientNetwork covers timeouts and connection errors, retried with backoff
	FailTransientNetwork FailureKind = "transient_network"
	// FailGatewayUnavailable means the matching engine's health probe failed;
	// parked intents are retried immediately when the gateway recovers
	FailGatewayUnavailable FailureKind = "gateway_unavailable"
	// FailMalformedResponse means a payload could not be parsed, possibly protocol drift
	FailMalformedResponse FailureKind = "malformed_response"
	// FailRateLimited means the remote explicitly throttled us
	FailRateLimited FailureKind = "rate_limited"
	// FailNotFound is a 404 on a read query, treated as a valid empty result
	FailNotFound FailureKind = "not_found"
	// FailPermanentExpiry means the intent exceeded its attempt or age limit
	FailPermanentExpiry FailureKind = "permanent_expiry"
)

// RetryRecord tracks per-intent failure bookkeeping.
// Attempts only ever increases; NextRetryAt is derived from Attempts.
type RetryRecord struct {
	Attempts    int
	FirstSeenAt time.Time
	NextRetryAt time.Time
	LastError   string
	LastKind    FailureKind
}

// PendingTrade is a fill awaiting settlement bookkeeping close-out
type PendingTrade struct {
	IntentID   string
	TradeID    string
	RetryCount int
}

// Completion is the result record posted back to the ledger for an intent
type Completion struct {
	IntentID     string `json:"intent_id"`
	Success      bool   `json:"success"`
	OutputAmount string `json:"output_amount,omitempty"`
	FeeAmount    string `json:"fee_amount"`
	Details      string `json:"execution_details"`
}
