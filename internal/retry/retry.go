// Package retry provides a bounded exponential-backoff retry combinator.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retry sequence.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first one.
	MaxAttempts int

	// BaseDelay is the pause before the second attempt. Each later pause
	// doubles, up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultPolicy returns three attempts with 500ms and 1s pauses.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
	}
}

// Delay returns the pause taken after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	d := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && (d > p.MaxDelay || d <= 0) {
		return p.MaxDelay
	}
	return d
}

func (p Policy) backOff() backoff.BackOff {
	if p.MaxAttempts <= 1 {
		return &backoff.StopBackOff{}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = backoff.DefaultMaxInterval
	}
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
}

// ExhaustedError is returned when every attempt of a sequence failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the error of the final attempt.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Notify is called after a failed attempt that will be retried.
type Notify func(attempt int, delay time.Duration, err error)

// TimerFunc creates the timer used to wait between attempts.
type TimerFunc func() backoff.Timer

type options struct {
	notify Notify
	timer  TimerFunc
}

// Option configures a single Do call.
type Option func(*options)

// WithNotify registers a hook called before each backoff pause.
func WithNotify(fn Notify) Option {
	return func(o *options) {
		o.notify = fn
	}
}

// WithTimer replaces the wall-clock timer.
func WithTimer(fn TimerFunc) Option {
	return func(o *options) {
		o.timer = fn
	}
}

// Do calls fn until it succeeds or the policy's attempts run out. The error of
// the final attempt is returned wrapped in an *ExhaustedError. Cancelling ctx
// stops the sequence and returns the context error.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	attempts := 0
	operation := func() (T, error) {
		attempts++
		res, err := fn(ctx)
		if err != nil && ctx.Err() != nil {
			return res, backoff.Permanent(ctx.Err())
		}
		return res, err
	}

	notify := func(err error, delay time.Duration) {
		if o.notify != nil {
			o.notify(attempts, delay, err)
		}
	}

	var timer backoff.Timer
	if o.timer != nil {
		timer = o.timer()
	}

	res, err := backoff.RetryNotifyWithTimerAndData(operation, backoff.WithContext(p.backOff(), ctx), notify, timer)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
	}
	return res, &ExhaustedError{Attempts: attempts, Err: err}
}
