package replicate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var DefaultBackoffs = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// RetryWithBackoff executes fn up to maxRetries times, sleeping between
// attempts according to backoffs. It stops early when ctx is done or fn
// returns an error wrapping ErrRejected.
func RetryWithBackoff(ctx context.Context, backoffs []time.Duration, maxRetries int, fn func() error) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if errors.Is(err, ErrRejected) {
			return fmt.Errorf("rejected after %d attempts: %w", i+1, err)
		}
		if i == maxRetries-1 || i >= len(backoffs) {
			continue
		}

		timer := time.NewTimer(backoffs[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry interrupted after %d attempts: %w", i+1, lastErr)
		case <-timer.C:
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
