package matching

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when the matching engine has no record for the
// requested resource. For market data reads this is a valid answer (a
// brand-new market has no prices yet), not a fault.
var ErrNotFound = errors.New("not found")

// StatusError is returned when the matching engine answers with an
// unexpected HTTP status code
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, e.Body)
}

// RateLimitError is returned when the matching engine throttles the client
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %v", e.RetryAfter)
	}
	return "rate limited"
}

// DecodeError is returned when a successful response body cannot be parsed
type DecodeError struct {
	Err  error
	Body string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v, body: %s", e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
