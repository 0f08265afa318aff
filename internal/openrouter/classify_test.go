package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

func TestIsRetriable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"wrapped cancelled", fmt.Errorf("upstream request failed: %w", context.Canceled), false},
		{"deadline", context.DeadlineExceeded, true},
		{"empty completion", ErrEmptyCompletion, true},
		{"rate limited", &APIError{Status: http.StatusTooManyRequests}, true},
		{"request timeout", &APIError{Status: http.StatusRequestTimeout}, true},
		{"too early", &APIError{Status: http.StatusTooEarly}, true},
		{"server error", &APIError{Status: http.StatusServiceUnavailable}, true},
		{"bad gateway", &APIError{Status: http.StatusBadGateway}, true},
		{"bad request", &APIError{Status: http.StatusBadRequest}, false},
		{"unauthorized", &APIError{Status: http.StatusUnauthorized}, false},
		{"transient phrase on 4xx", &APIError{Status: http.StatusForbidden, Message: "provider is overloaded"}, true},
		{"provider error phrase", &APIError{Status: http.StatusPaymentRequired, Message: "provider returned error: upstream busy"}, true},
		{"net timeout", timeoutErr{}, true},
		{"transport wrap", errors.New("upstream request failed: connection reset"), true},
		{"other", errors.New("something else"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRetriable(tc.err))
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(&APIError{Status: http.StatusServiceUnavailable}))
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(fmt.Errorf("wrapped: %w", &APIError{Status: http.StatusTooManyRequests})))
	assert.Equal(t, http.StatusGatewayTimeout, StatusOf(context.DeadlineExceeded))
	assert.Equal(t, http.StatusBadGateway, StatusOf(errors.New("connection refused")))
}
