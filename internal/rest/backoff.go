package rest

import (
	"context"
	"math/rand/v2"
	"time"
)

// Retry policy.
const (
	MaxAttempts = 3
	BaseDelay   = 1000 * time.Millisecond
	MaxJitter   = 100 * time.Millisecond
)

// backoffDelay returns the wait after failed attempt i (0-based):
// BaseDelay * 2^i plus a uniform jitter in [0, MaxJitter).
func backoffDelay(attempt int) time.Duration {
	return BaseDelay<<attempt + rand.N(MaxJitter)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
