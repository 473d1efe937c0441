package apt

import (
	"context"
	"errors"
	"time"
)

// ErrFetch is returned when the package index cannot be retrieved or
// decompressed. It covers network failures, non-200 responses, and
// gzip errors; callers treat all of them as fatal to the run.
var ErrFetch = errors.New("fetch package index")

// retryableError marks a failure as transient so retryWithBackoff
// attempts it again. Only transport errors and 5xx responses qualify;
// a 404 or a corrupt gzip stream will not get better by retrying.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// retry runs fn up to attempts times with exponential backoff starting
// at delay, retrying only errors marked retryable. The delay doubles
// after each failed attempt. Returns the last error if all attempts
// fail, or ctx.Err() if cancelled while waiting.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
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
