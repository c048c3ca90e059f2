package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelay(t *testing.T) {
	p := Policy{
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
		Factor:       2,
	}

	tests := []struct {
		attempts int
		minDelay time.Duration
		maxDelay time.Duration
	}{
		{0, 1 * time.Second, 1 * time.Second},     // 1s
		{1, 2 * time.Second, 2 * time.Second},     // 2s
		{2, 4 * time.Second, 4 * time.Second},     // 4s
		{3, 8 * time.Second, 8 * time.Second},     // 8s
		{10, 60 * time.Second, 60 * time.Second},  // max 60s
		{100, 60 * time.Second, 60 * time.Second}, // still max 60s
		{-1, 1 * time.Second, 1 * time.Second},    // treated as 0
	}

	for _, tt := range tests {
		delay := p.Delay(tt.attempts)
		if delay < tt.minDelay || delay > tt.maxDelay {
			t.Errorf("Delay(%d) = %s, want between %s and %s",
				tt.attempts, delay, tt.minDelay, tt.maxDelay)
		}
	}
}

func TestDelayWithJitter(t *testing.T) {
	p := Policy{
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
		Factor:       2,
		JitterWindow: 500 * time.Millisecond,
	}

	// Every delay stays within [base, max+jitter] regardless of attempt count
	for attempts := 0; attempts <= 50; attempts++ {
		delay := p.Delay(attempts)
		assert.GreaterOrEqual(t, delay, p.InitialDelay)
		assert.LessOrEqual(t, delay, p.MaxDelay+p.JitterWindow)
	}
}

func TestDelayMonotonic(t *testing.T) {
	// Without jitter the schedule must never shrink as attempts grow
	p := Policy{
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Factor:       2,
	}

	prev := time.Duration(0)
	for attempts := 0; attempts <= 20; attempts++ {
		delay := p.Delay(attempts)
		assert.GreaterOrEqual(t, delay, prev, "delay shrank at attempt %d", attempts)
		prev = delay
	}
}

func TestDelayOverflow(t *testing.T) {
	p := Policy{
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
		Factor:       2,
	}

	// Huge attempt counts must saturate at MaxDelay, never wrap negative
	for _, attempts := range []int{63, 64, 1000, 1 << 30} {
		delay := p.Delay(attempts)
		assert.Equal(t, p.MaxDelay, delay, "attempts=%d", attempts)
	}
}

func TestNextRetryAt(t *testing.T) {
	p := Policy{
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
		Factor:       2,
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(1*time.Second), p.NextRetryAt(now, 0))
	assert.Equal(t, now.Add(4*time.Second), p.NextRetryAt(now, 2))
	assert.Equal(t, now.Add(60*time.Second), p.NextRetryAt(now, 99))
}
