package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_ConcurrencyCap(t *testing.T) {
	l := New(2, 0)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))

	// Third acquire must block until a slot is released.
	blocked, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := l.Acquire(blocked)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	l.Release()
	require.NoError(t, l.Acquire(ctx))

	l.Release()
	l.Release()
}

func TestLimiter_Spacing(t *testing.T) {
	interval := 30 * time.Millisecond
	l := New(3, interval)
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		require.NoError(t, l.Acquire(ctx))
		l.Release()
	}
	elapsed := time.Since(start)

	// First dispatch is immediate; the next two wait an interval each.
	assert.GreaterOrEqual(t, elapsed, 2*interval)
}

func TestLimiter_CanceledContext(t *testing.T) {
	l := New(1, 0)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)

	// Slot must not leak on a failed acquire.
	l.Release()
	require.NoError(t, l.Acquire(context.Background()))
	l.Release()
}
