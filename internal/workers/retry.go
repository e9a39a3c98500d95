package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	applog "watchflip/internal/log"
)

// ErrPermanent marks an error that must not be retried.
var ErrPermanent = errors.New("permanent failure")

// Retry holds the parameters for the retry strategy.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Do executes fn with exponential back-off. Errors wrapping ErrPermanent and
// context cancellation stop immediately.
func (r Retry) Do(ctx context.Context, operation string, fn func(context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrPermanent) || ctx.Err() != nil {
			return lastErr
		}
		if attempt < attempts {
			applog.Warn(nil, "retry", lastErr, map[string]any{
				"operation": operation, "attempt": attempt, "of": attempts, "delay_ms": delay.Milliseconds(),
			})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}
