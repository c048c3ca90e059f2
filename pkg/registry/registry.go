// Package registry owns the orchestrator's only shared mutable state: the
// intents being tracked, their retry bookkeeping, and the set of intents
// currently inside a processor call.
package registry

import (
	"sync"
	"time"

	"github.com/foresight-hq/foresight-settler/pkg/models"
)

// Registry is the in-memory store of known intents. Every mutation of a
// single intent's state is an atomic read-modify-write under one lock, so
// concurrent processor, sweeper and recovery passes cannot lose updates.
type Registry struct {
	mu         sync.Mutex
	intents    map[string]*models.Intent
	records    map[string]*models.RetryRecord
	processing map[string]struct{}
}

// Stats is a point-in-time summary of registry state
type Stats struct {
	Tracked  int `json:"tracked"`
	InFlight int `json:"in_flight"`
}

// IntentStatus is a read-only view of one tracked intent's bookkeeping
type IntentStatus struct {
	ID          string             `json:"id"`
	Kind        string             `json:"kind"`
	Attempts    int                `json:"attempts"`
	FirstSeenAt time.Time          `json:"first_seen_at"`
	NextRetryAt time.Time          `json:"next_retry_at"`
	LastError   string             `json:"last_error,omitempty"`
	LastKind    models.FailureKind `json:"last_error_kind,omitempty"`
	Processing  bool               `json:"processing"`
}

// Abandoned pairs a terminally failed intent with its final bookkeeping
type Abandoned struct {
	Intent *models.Intent
	Record models.RetryRecord
	Reason string // "max_attempts" or "age"
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		intents:    make(map[string]*models.Intent),
		records:    make(map[string]*models.RetryRecord),
		processing: make(map[string]struct{}),
	}
}

// Track inserts a brand-new intent with a fresh retry record. It returns
// false when the intent is already known, leaving existing state untouched.
func (r *Registry) Track(intent *models.Intent, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[intent.ID]; exists {
		return false
	}

	r.intents[intent.ID] = intent
	r.records[intent.ID] = &models.RetryRecord{
		FirstSeenAt: now,
		NextRetryAt: now,
	}
	return true
}

// Known reports whether the intent is currently tracked
func (r *Registry) Known(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.records[id]
	return exists
}

// Get returns the tracked intent for an id
func (r *Registry) Get(id string) (*models.Intent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	intent, exists := r.intents[id]
	return intent, exists
}

// Record returns a copy of the retry record for an id
func (r *Registry) Record(id string) (models.RetryRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, exists := r.records[id]
	if !exists {
		return models.RetryRecord{}, false
	}
	return *rec, true
}

// Remove deletes an intent and its retry record. The processing set is left
// to the processor's own deferred clear so the in-flight guard stays intact
// until the call actually returns.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.intents, id)
	delete(r.records, id)
}

// MarkProcessing claims the single in-flight slot for an intent. It returns
// false when another processor call already holds it.
func (r *Registry) MarkProcessing(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, inFlight := r.processing[id]; inFlight {
		return false
	}
	r.processing[id] = struct{}{}
	return true
}

// ClearProcessing releases the in-flight slot for an intent
func (r *Registry) ClearProcessing(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.processing, id)
}

// IsProcessing reports whether a processor call is in flight for the id
func (r *Registry) IsProcessing(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, inFlight := r.processing[id]
	return inFlight
}

// InFlight returns the number of processor calls currently in flight
func (r *Registry) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.processing)
}

// RecordFailure increments the attempt count and stores the failure detail
// for an intent. It returns the new attempt count, or -1 when the intent is
// no longer tracked (expired or completed while the call was in flight).
func (r *Registry) RecordFailure(id string, kind models.FailureKind, errMsg string, nextRetryAt time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.records[id]
	if !exists {
		return -1
	}

	rec.Attempts++
	rec.NextRetryAt = nextRetryAt
	rec.LastError = errMsg
	rec.LastKind = kind
	return rec.Attempts
}

// DueForRetry returns intents whose backoff has elapsed, that still have
// attempts left and that are not currently in flight.
func (r *Registry) DueForRetry(now time.Time, maxAttempts int) []*models.Intent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []*models.Intent
	for id, rec := range r.records {
		if rec.Attempts >= maxAttempts {
			continue
		}
		if now.Before(rec.NextRetryAt) {
			continue
		}
		if _, inFlight := r.processing[id]; inFlight {
			continue
		}
		due = append(due, r.intents[id])
	}
	return due
}

// TakeExpired atomically removes and returns every intent that exceeded its
// attempt budget or absolute age. Intents with a processor call in flight are
// skipped; they are picked up on a later sweep once the call has returned.
func (r *Registry) TakeExpired(now time.Time, maxAttempts int, maxAge time.Duration) []Abandoned {
	r.mu.Lock()
	defer r.mu.Unlock()

	var abandoned []Abandoned
	for id, rec := range r.records {
		if _, inFlight := r.processing[id]; inFlight {
			continue
		}

		reason := ""
		if rec.Attempts >= maxAttempts {
			reason = "max_attempts"
		} else if now.Sub(rec.FirstSeenAt) > maxAge {
			reason = "age"
		}
		if reason == "" {
			continue
		}

		abandoned = append(abandoned, Abandoned{
			Intent: r.intents[id],
			Record: *rec,
			Reason: reason,
		})
		delete(r.intents, id)
		delete(r.records, id)
	}
	return abandoned
}

// ResetGatewayParked rewinds every intent whose last failure was the gateway
// being down: attempts back to zero, due immediately. It returns the intents
// that are free to dispatch right now (in-flight ones keep their slot).
func (r *Registry) ResetGatewayParked(now time.Time) []*models.Intent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var drained []*models.Intent
	for id, rec := range r.records {
		if rec.LastKind != models.FailGatewayUnavailable {
			continue
		}

		rec.Attempts = 0
		rec.NextRetryAt = now

		if _, inFlight := r.processing[id]; !inFlight {
			drained = append(drained, r.intents[id])
		}
	}
	return drained
}

// Stats returns a point-in-time summary of the registry
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Tracked:  len(r.records),
		InFlight: len(r.processing),
	}
}

// Snapshot returns a read-only view of every tracked intent's bookkeeping
func (r *Registry) Snapshot() []IntentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	statuses := make([]IntentStatus, 0, len(r.records))
	for id, rec := range r.records {
		_, inFlight := r.processing[id]
		status := IntentStatus{
			ID:          id,
			Attempts:    rec.Attempts,
			FirstSeenAt: rec.FirstSeenAt,
			NextRetryAt: rec.NextRetryAt,
			LastError:   rec.LastError,
			LastKind:    rec.LastKind,
			Processing:  inFlight,
		}
		if intent, ok := r.intents[id]; ok {
			status.Kind = intent.Kind.String()
		}
		statuses = append(statuses, status)
	}
	return statuses
}
