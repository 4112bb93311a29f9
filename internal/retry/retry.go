// Package retry runs an operation a bounded number of times, sleeping between
// attempts. The delay can be chosen per attempt by the operation itself, which
// is how rate-limited responses get a longer backoff than ordinary failures.
package retry

import (
	"context"
	"time"

	"emperror.dev/errors"
)

// Func is one attempt. attempt counts from 0.
type Func func(ctx context.Context, attempt int) error

// Config holds the retry behaviour.
type Config struct {
	maxAttempts int
	delay       time.Duration
	sleep       func(context.Context, time.Duration) error
}

// Option configures Do.
type Option func(*Config)

// WithMaxAttempts sets the total number of attempts, first one included.
// Default is 3.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithDelay sets the fixed delay between attempts. Default is 2 seconds.
func WithDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithSleep replaces the sleep function. Tests use it to record delays.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(c *Config) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		maxAttempts: 3,
		delay:       2 * time.Second,
		sleep:       Sleep,
	}
}

type afterError struct {
	err   error
	delay time.Duration
}

func (e *afterError) Error() string { return e.err.Error() }
func (e *afterError) Unwrap() error { return e.err }

// After marks err as retryable after d instead of the fixed delay.
func After(err error, d time.Duration) error {
	return &afterError{err: err, delay: d}
}

type stopError struct{ err error }

func (e *stopError) Error() string { return e.err.Error() }
func (e *stopError) Unwrap() error { return e.err }

// Stop marks err as final: Do returns it without further attempts.
func Stop(err error) error {
	return &stopError{err: err}
}

// Do calls fn until it succeeds, returns a Stop error, the attempts run out or
// ctx is done. There is no sleep after the last attempt. The returned error
// wraps the last failure.
func Do(ctx context.Context, fn Func, opts ...Option) error {
	if fn == nil {
		return errors.New("retry: function cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var lastErr error
	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "retry aborted before attempt %d/%d", attempt+1, cfg.maxAttempts)
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}

		var stop *stopError
		if errors.As(err, &stop) {
			return stop.err
		}
		lastErr = err

		if attempt == cfg.maxAttempts-1 {
			break
		}

		delay := cfg.delay
		var after *afterError
		if errors.As(err, &after) {
			delay = after.delay
		}
		if err := cfg.sleep(ctx, delay); err != nil {
			return errors.Wrapf(err, "retry aborted during backoff (attempt %d/%d)", attempt+1, cfg.maxAttempts)
		}
	}

	return errors.Wrapf(lastErr, "retry failed after %d attempts", cfg.maxAttempts)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns base * 2^attempt.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return base << uint(attempt)
}
