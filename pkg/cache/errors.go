package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork is returned by the Redis backend when the cache server cannot
// be reached. The file and null backends never return it.
var ErrNetwork = errors.New("cache backend unreachable")

// RetryableError marks a backend failure as transient. Solver results are
// cheap to recompute, so callers retry a marked failure a few times and
// then fall back to treating the lookup as a miss.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError anywhere in its
// chain.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff runs fn up to 3 times with exponential backoff between
// attempts. Only retryable errors trigger another attempt; anything else is
// returned immediately. The pipeline wraps its cache reads and writes in
// this so a briefly unreachable Redis does not fail a solve.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := time.Second
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
