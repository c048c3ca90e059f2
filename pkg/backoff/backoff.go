// Package backoff computes capped exponential retry delays.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Policy computes the delay before a retry attempt. Delay is pure apart from
// the jitter term, so schedules can be verified independently of the clock.
type Policy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64
	JitterWindow time.Duration
}

// Delay returns InitialDelay * Factor^attempts capped at MaxDelay, plus a
// random jitter in [0, JitterWindow). Negative attempt counts are treated
// as zero; large ones saturate at MaxDelay instead of overflowing.
func (p Policy) Delay(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}

	base := float64(p.InitialDelay) * math.Pow(p.Factor, float64(attempts))
	if base < 0 || base > float64(p.MaxDelay) || math.IsInf(base, 1) {
		base = float64(p.MaxDelay)
	}

	delay := time.Duration(base)
	if p.JitterWindow > 0 {
		delay += time.Duration(rand.Int63n(int64(p.JitterWindow)))
	}
	return delay
}

// NextRetryAt returns the instant the next attempt becomes due
func (p Policy) NextRetryAt(now time.Time, attempts int) time.Time {
	return now.Add(p.Delay(attempts))
}
