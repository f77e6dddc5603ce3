package activity

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Default retry policy values.
const (
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultJitter      = 0.2
)

// ErrCircuitOpen is returned while the provider circuit breaker is open.
var ErrCircuitOpen = errors.New("activity: provider circuit open")

// Executor runs an operation under a resilience policy.
type Executor interface {
	Execute(ctx context.Context, op func(ctx context.Context) error) error
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so retry executors fail immediately instead of
// burning attempts on it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// RetryExecutor retries failed operations with exponential backoff and
// jitter. The sleep and random functions are injectable so tests run
// without wall-clock delays.
type RetryExecutor struct {
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	jitter      float64

	sleep func(ctx context.Context, d time.Duration) error
	randf func() float64
}

// RetryOption configures RetryExecutor.
type RetryOption func(*RetryExecutor)

// WithMaxRetries sets maximum retry attempts after the first try.
func WithMaxRetries(n int) RetryOption {
	return func(e *RetryExecutor) { e.maxRetries = n }
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) RetryOption {
	return func(e *RetryExecutor) { e.retryDelay = d }
}

// WithMaxDelay sets the backoff ceiling.
func WithMaxDelay(d time.Duration) RetryOption {
	return func(e *RetryExecutor) { e.maxDelay = d }
}

// WithJitter sets the random fraction added to each delay.
func WithJitter(f float64) RetryOption {
	return func(e *RetryExecutor) { e.jitter = f }
}

// WithSleep replaces the delay function.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) RetryOption {
	return func(e *RetryExecutor) { e.sleep = fn }
}

// WithRand replaces the jitter random source.
func WithRand(fn func() float64) RetryOption {
	return func(e *RetryExecutor) { e.randf = fn }
}

// NewRetryExecutor creates a RetryExecutor with default policy values.
func NewRetryExecutor(opts ...RetryOption) *RetryExecutor {
	e := &RetryExecutor{
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		jitter:      DefaultJitter,
		sleep: func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		},
		randf: rand.Float64,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs op until it succeeds, returns a permanent error, or the
// attempt budget is exhausted.
func (e *RetryExecutor) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	delay := e.retryDelay
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			d := delay
			if e.jitter > 0 {
				d += time.Duration(e.randf() * e.jitter * float64(delay))
			}
			if err := e.sleep(ctx, d); err != nil {
				return err
			}
			delay = time.Duration(float64(delay) * e.backoffMult)
			if delay > e.maxDelay {
				delay = e.maxDelay
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// CircuitBreaker wraps an Executor and stops calling the provider after
// consecutive failures. After the cooldown one trial call is let through;
// its outcome decides whether the circuit closes again.
type CircuitBreaker struct {
	inner     Executor
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	failures int
	openedAt time.Time
	open     bool
	onOpen   func()
}

// BreakerOption configures CircuitBreaker.
type BreakerOption func(*CircuitBreaker)

// WithClock replaces the time source.
func WithClock(fn func() time.Time) BreakerOption {
	return func(b *CircuitBreaker) { b.now = fn }
}

// WithOnOpen registers a callback invoked each time the circuit opens.
func WithOnOpen(fn func()) BreakerOption {
	return func(b *CircuitBreaker) { b.onOpen = fn }
}

// NewCircuitBreaker wraps inner, opening after threshold consecutive
// failures and staying open for cooldown.
func NewCircuitBreaker(inner Executor, threshold int, cooldown time.Duration, opts ...BreakerOption) *CircuitBreaker {
	b := &CircuitBreaker{
		inner:     inner,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs op through the inner executor unless the circuit is open.
func (b *CircuitBreaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	if b.open {
		if b.now().Sub(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		// Half-open: let one trial call through.
		b.open = false
		b.failures = b.threshold - 1
	}
	b.mu.Unlock()

	err := b.inner.Execute(ctx, op)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failures = 0
		return nil
	}
	b.failures++
	if b.failures >= b.threshold {
		b.open = true
		b.openedAt = b.now()
		if b.onOpen != nil {
			b.onOpen()
		}
	}
	return err
}
