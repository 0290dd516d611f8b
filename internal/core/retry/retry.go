// Package retry provides a bounded retry combinator for operations that can
// fail transiently, such as invoice number allocation racing on a unique index.
package retry

import (
	"context"
	"errors"
	"time"
)

// BackoffFunc returns the delay to wait after the given failed attempt
// (1-based). A nil BackoffFunc means no delay between attempts.
type BackoffFunc func(attempt int) time.Duration

// Retryable wraps an error to mark it as worth retrying.
type Retryable struct {
	Err error
}

func (r *Retryable) Error() string { return r.Err.Error() }
func (r *Retryable) Unwrap() error { return r.Err }

// MarkRetryable wraps err so Attempt will retry it.
func MarkRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &Retryable{Err: err}
}

// IsRetryable reports whether err is marked retryable.
func IsRetryable(err error) bool {
	var r *Retryable
	return errors.As(err, &r)
}

// Linear returns a BackoffFunc growing linearly: step, 2*step, 3*step, ...
func Linear(step time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt)
	}
}

// Attempt runs fn up to maxAttempts times. Errors not marked retryable stop
// immediately and are returned as-is. After the final attempt the underlying
// error is returned unwrapped from its Retryable marker.
func Attempt(ctx context.Context, maxAttempts int, backoff BackoffFunc, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		var r *Retryable
		if !errors.As(err, &r) {
			return err
		}
		err = r.Err

		if attempt == maxAttempts {
			break
		}

		if backoff != nil {
			select {
			case <-time.After(backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}
