package app

import (
	"context"
	"math/rand/v2"
	"time"
)

// Reconnect backoff defaults.
const (
	DefaultBackoffInitial = 500 * time.Millisecond
	DefaultBackoffMax     = 30 * time.Second
)

// backoff is a capped exponential delay with ±20% jitter. It is owned by a
// single goroutine.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	if initial <= 0 {
		initial = DefaultBackoffInitial
	}
	if max < initial {
		max = initial
	}
	return &backoff{
		initial: initial,
		max:     max,
		current: initial,
	}
}

// Next returns the jittered current delay and doubles it for the next call.
func (b *backoff) Next() time.Duration {
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	d := time.Duration(float64(b.current) + jitter)

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Sleep waits for Next() or until ctx is done.
func (b *backoff) Sleep(ctx context.Context) error {
	timer := time.NewTimer(b.Next())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Reset restores the initial delay.
func (b *backoff) Reset() {
	b.current = b.initial
}

// Current returns the un-jittered delay the next Sleep is based on.
func (b *backoff) Current() time.Duration {
	return b.current
}
