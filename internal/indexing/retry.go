package indexing

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrPermanent marks failures that retrying cannot fix.
var ErrPermanent = errors.New("permanent failure")

// ErrInvalidMaxAttempts is returned by RetryWithBackoff for maxAttempts < 1.
var ErrInvalidMaxAttempts = errors.New("maxAttempts must be positive")

type permanentError struct{ err error }

func (e *permanentError) Error() string        { return e.err.Error() }
func (e *permanentError) Unwrap() error        { return e.err }
func (e *permanentError) Is(target error) bool { return target == ErrPermanent }

// Permanent wraps err so RetryWithBackoff stops immediately. The result
// matches both err and ErrPermanent with errors.Is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithBackoff calls operation until it succeeds, returns a Permanent
// error, or maxAttempts is reached. The delay before attempt n+1 is
// baseDelay * 2^(n-1). It returns the number of attempts made and the last
// error.
func RetryWithBackoff(ctx context.Context, operation func(attempt int) error, maxAttempts int, baseDelay time.Duration) (int, error) {
	if maxAttempts <= 0 {
		return 0, ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		lastErr = operation(attempt)
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return attempt, nil
		}
		if errors.Is(lastErr, ErrPermanent) {
			return attempt, lastErr
		}

		slog.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "err", lastErr)
		if attempt == maxAttempts {
			break
		}

		delay := baseDelay << (attempt - 1)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}
	return maxAttempts, lastErr
}
