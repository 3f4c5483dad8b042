package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveInterval(t *testing.T) {
	_, err := New(Options{}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestNextTickAlignment(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 17, 30, 0, time.UTC)

	aligned, err := New(Options{Interval: time.Hour, AlignToBucket: true}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC), aligned.nextTick(now))
	assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC), aligned.nextTick(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), aligned.bucketStart(now))

	free, err := New(Options{Interval: time.Hour}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), free.nextTick(now))
	assert.Equal(t, now, free.bucketStart(now))
}

func TestRunInvokesJobUntilCancelled(t *testing.T) {
	s, err := New(Options{Interval: 10 * time.Millisecond, RunImmediately: true}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context, time.Time) error {
			if calls.Add(1) == 3 {
				cancel()
			}
			return errors.New("job errors are logged and ignored")
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestRunHonoursStartupDelayCancellation(t *testing.T) {
	s, err := New(Options{Interval: time.Hour, StartupDelay: time.Hour, RunImmediately: true}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var called bool
	err = s.Run(ctx, func(context.Context, time.Time) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
}
