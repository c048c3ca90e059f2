package settler

import (
	"errors"
	"strings"

	"github.com/foresight-hq/foresight-settler/pkg/matching"
	"github.com/foresight-hq/foresight-settler/pkg/models"
)

// classifyError maps a submit failure to a failure kind. Every kind returned
// here is retried with backoff; permanence is decided later by the sweeper
// from attempt count and age, never from the error itself.
func classifyError(err error) models.FailureKind {
	var rateLimited *matching.RateLimitError
	var decodeErr *matching.DecodeError
	var statusErr *matching.StatusError

	switch {
	case errors.Is(err, matching.ErrNotFound):
		return models.FailNotFound
	case errors.As(err, &rateLimited):
		return models.FailRateLimited
	case errors.As(err, &decodeErr):
		return models.FailMalformedResponse
	case errors.As(err, &statusErr):
		return models.FailTransientNetwork
	}

	// Transport errors arrive as opaque url.Error chains, so fall back to
	// substring matching on the rendered message
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "EOF") {
		return models.FailTransientNetwork
	}

	if strings.Contains(errStr, "invalid character") ||
		strings.Contains(errStr, "unexpected end of JSON") {
		return models.FailMalformedResponse
	}

	return models.FailTransientNetwork
}
