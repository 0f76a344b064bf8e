package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrors_MatchKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"transport", &TransportError{Op: "POST /x", Err: errors.New("dial tcp: refused")}, ErrTransport},
		{"rate limit", &RateLimitError{RetryAfter: 5 * time.Second}, ErrRateLimited},
		{"server", &APIError{Status: 502, Message: "bad gateway"}, ErrServer},
		{"client", &APIError{Status: 400, Message: "bad request"}, ErrClient},
		{"not found", &NotFoundError{ResourceType: "channel", ResourceID: "1"}, ErrNotFound},
		{"too long", &ContentTooLongError{Length: 2001, Limit: 2000}, ErrContentTooLong},
		{"wrapped", fmt.Errorf("send message: %w", &RateLimitError{}), ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
		})
	}
}

func TestTransportError_UnwrapsCause(t *testing.T) {
	err := &TransportError{Op: "GET /users/@me", Err: context.DeadlineExceeded}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "GET /users/@me")
}

func TestAPIError_ClientIsNotServer(t *testing.T) {
	err := &APIError{Status: 418}
	assert.NotErrorIs(t, err, ErrServer)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&TransportError{Op: "x", Err: errors.New("reset")}))
	assert.True(t, IsRetryable(&APIError{Status: 503}))
	assert.False(t, IsRetryable(&APIError{Status: 404}))
	assert.False(t, IsRetryable(&RateLimitError{RetryAfter: time.Second}))
	assert.False(t, IsRetryable(ErrDecode))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(fmt.Errorf("gateway: %w", ErrAuthentication)))
	assert.False(t, IsFatal(ErrReconnectRequired))
	assert.False(t, IsFatal(ErrClosed))
}

func TestRateLimitError_Message(t *testing.T) {
	err := &RateLimitError{RetryAfter: 5 * time.Second}
	assert.Equal(t, "discline: rate limited: retry after 5s", err.Error())
}

func TestAPIError_Cause(t *testing.T) {
	cause := &TransportError{Op: "GET /users/@me", Err: errors.New("reset")}
	err := &APIError{Status: 500, Message: "max retries reached", Cause: cause}

	assert.ErrorIs(t, err, ErrServer)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "max retries reached")
}
