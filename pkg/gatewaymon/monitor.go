// Package gatewaymon tracks the observed availability of the matching engine.
package gatewaymon

import (
	"sync"
	"time"
)

// Monitor keeps the online/offline state of the matching engine as seen by
// the health probe. Transitions are edge-detected so the caller can react
// exactly once per flip: the offline→online edge triggers the drain of
// gateway-parked intents.
type Monitor struct {
	online              bool
	consecutiveFailures int
	lastProbe           time.Time
	lastTransition      time.Time
	mu                  sync.Mutex
}

// State is a snapshot of the monitor for status reporting
type State struct {
	Online              bool      `json:"online"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastProbe           time.Time `json:"last_probe"`
	LastTransition      time.Time `json:"last_transition"`
}

// NewMonitor creates a monitor that assumes the gateway is online until the
// first probe says otherwise, so fresh intents are not parked before any
// probe has run.
func NewMonitor() *Monitor {
	return &Monitor{online: true}
}

// RecordSuccess marks a successful probe. Returns true when this probe
// brought the gateway back from offline.
func (m *Monitor) RecordSuccess() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastProbe = now
	m.consecutiveFailures = 0

	if !m.online {
		m.online = true
		m.lastTransition = now
		return true
	}
	return false
}

// RecordFailure marks a failed probe. Returns true when this probe took the
// gateway offline.
func (m *Monitor) RecordFailure() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastProbe = now
	m.consecutiveFailures++

	if m.online {
		m.online = false
		m.lastTransition = now
		return true
	}
	return false
}

// IsOnline reports the last observed gateway state
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// GetState returns a snapshot of the monitor state
func (m *Monitor) GetState() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return State{
		Online:              m.online,
		ConsecutiveFailures: m.consecutiveFailures,
		LastProbe:           m.lastProbe,
		LastTransition:      m.lastTransition,
	}
}
