package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noSleep swaps delays out so tests run instantly.
func noSleep(opts ...RetryOption) *RetryExecutor {
	base := []RetryOption{
		WithSleep(func(ctx context.Context, d time.Duration) error { return ctx.Err() }),
		WithRand(func() float64 { return 0 }),
	}
	return NewRetryExecutor(append(base, opts...)...)
}

func TestRetryExecutor_SucceedsAfterTransientFailures(t *testing.T) {
	e := noSleep()

	calls := 0
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExecutor_ExhaustsBudget(t *testing.T) {
	e := noSleep(WithMaxRetries(2))

	calls := 0
	boom := errors.New("boom")
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls) // first try plus two retries
}

func TestRetryExecutor_PermanentErrorNotRetried(t *testing.T) {
	e := noSleep()

	calls := 0
	bad := errors.New("bad request")
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(bad)
	})
	require.ErrorIs(t, err, bad)
	assert.Equal(t, 1, calls)
}

func TestRetryExecutor_BackoffCapped(t *testing.T) {
	var delays []time.Duration
	e := NewRetryExecutor(
		WithMaxRetries(5),
		WithRetryDelay(1*time.Second),
		WithMaxDelay(4*time.Second),
		WithJitter(0),
		WithSleep(func(ctx context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}),
	)

	_ = e.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("always")
	})

	assert.Equal(t, []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second,
	}, delays)
}

func TestRetryExecutor_CanceledContextStopsRetrying(t *testing.T) {
	e := NewRetryExecutor() // real sleep, canceled immediately

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := e.Execute(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	now := time.Unix(1_000, 0)
	opened := 0
	b := NewCircuitBreaker(noSleep(WithMaxRetries(0)), 2, time.Minute,
		WithClock(func() time.Time { return now }),
		WithOnOpen(func() { opened++ }),
	)

	fail := func(ctx context.Context) error { return errors.New("down") }

	require.Error(t, b.Execute(context.Background(), fail))
	require.Error(t, b.Execute(context.Background(), fail))

	// Circuit is now open: the operation is not even attempted.
	calls := 0
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls)
	assert.Equal(t, 1, opened)
}

func TestCircuitBreaker_HalfOpenTrialCloses(t *testing.T) {
	now := time.Unix(1_000, 0)
	b := NewCircuitBreaker(noSleep(WithMaxRetries(0)), 1, time.Minute,
		WithClock(func() time.Time { return now }),
	)

	require.Error(t, b.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("down")
	}))
	assert.ErrorIs(t, b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	}), ErrCircuitOpen)

	// After the cooldown one trial call goes through and closes the circuit.
	now = now.Add(2 * time.Minute)
	require.NoError(t, b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	}))
	require.NoError(t, b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	}))
}

func TestCircuitBreaker_HalfOpenTrialFailureReopens(t *testing.T) {
	now := time.Unix(1_000, 0)
	b := NewCircuitBreaker(noSleep(WithMaxRetries(0)), 1, time.Minute,
		WithClock(func() time.Time { return now }),
	)

	require.Error(t, b.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("down")
	}))

	now = now.Add(2 * time.Minute)
	require.Error(t, b.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("still down")
	}))

	assert.ErrorIs(t, b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	}), ErrCircuitOpen)
}
