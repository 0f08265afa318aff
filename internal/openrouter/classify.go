package openrouter

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// transientPhrases mark provider-reported errors that are worth another
// attempt even when the status code alone looks fatal.
var transientPhrases = []string{
	"overloaded",
	"rate limit",
	"temporarily unavailable",
	"provider returned error",
}

// IsRetriable classifies an attempt outcome. Retriable: rate-limiting and
// overload statuses, transient provider phrases, transport failures,
// per-attempt timeouts, and empty-content successes. Parent cancellation
// and every other failure is fatal and must not be retried.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrEmptyCompletion) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
			return true
		}
		if apiErr.Status >= 500 && apiErr.Status < 600 {
			return true
		}
		msg := strings.ToLower(apiErr.Message)
		for _, phrase := range transientPhrases {
			if strings.Contains(msg, phrase) {
				return true
			}
		}
		return false
	}

	// Remaining non-API errors on this path are transport-level
	// (connection reset, DNS, TLS), all transient.
	var netLike interface{ Timeout() bool }
	if errors.As(err, &netLike) {
		return true
	}
	return strings.Contains(err.Error(), "upstream request failed")
}

// StatusOf extracts the HTTP-equivalent status of an error for surfacing
// to the caller, defaulting to 502 when none was observed.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status > 0 {
		return apiErr.Status
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
