package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff_GrowsAndCaps(t *testing.T) {
	b := newBackoff(100*time.Millisecond, 350*time.Millisecond)

	want := []time.Duration{100, 200, 350, 350}
	for i, base := range want {
		base *= time.Millisecond
		d := b.Next()
		assert.GreaterOrEqual(t, d, base*8/10, "step %d", i)
		assert.LessOrEqual(t, d, base*12/10, "step %d", i)
	}

	b.Reset()
	assert.Equal(t, 100*time.Millisecond, b.Current())
}

func TestBackoff_Defaults(t *testing.T) {
	b := newBackoff(0, 0)
	assert.Equal(t, DefaultBackoffInitial, b.Current())
	assert.Equal(t, DefaultBackoffInitial, b.max)
}

func TestBackoff_SleepHonorsContext(t *testing.T) {
	b := newBackoff(time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := b.Sleep(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBackoff_Sleep(t *testing.T) {
	b := newBackoff(time.Millisecond, time.Millisecond)
	require.NoError(t, b.Sleep(context.Background()))
}
