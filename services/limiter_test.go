package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterCap(t *testing.T) {
	l := NewLimiter(1)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := l.Acquire(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	l.Release()
	require.NoError(t, l.Acquire(ctx))
	l.Release()
}

func TestLimiterCanceledContext(t *testing.T) {
	l := NewLimiter(1)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)
}

func TestLimiterZeroSize(t *testing.T) {
	// A nonsensical size still yields a usable limiter.
	l := NewLimiter(0)
	require.NoError(t, l.Acquire(context.Background()))
	l.Release()
}
