package replicate_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"emoji-backend/internal/replicate"
	"github.com/stretchr/testify/assert"
)

var fastBackoffs = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}

func TestRetryWithBackoff(t *testing.T) {
	callCount := 0
	err := replicate.RetryWithBackoff(context.Background(), fastBackoffs, 3, func() error {
		callCount++
		if callCount < 3 {
			return assert.AnError
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	callCount := 0
	err := replicate.RetryWithBackoff(context.Background(), fastBackoffs, 3, func() error {
		callCount++
		return assert.AnError
	})

	assert.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed after 3 retries")
	assert.Equal(t, 3, callCount)
}

func TestRetryWithBackoff_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	callCount := 0
	err := replicate.RetryWithBackoff(ctx, []time.Duration{time.Hour}, 3, func() error {
		callCount++
		return assert.AnError
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retry interrupted")
	assert.Equal(t, 1, callCount)
}

func TestRetryWithBackoff_StopsOnRejection(t *testing.T) {
	callCount := 0
	err := replicate.RetryWithBackoff(context.Background(), fastBackoffs, 3, func() error {
		callCount++
		return fmt.Errorf("%w: status 422", replicate.ErrRejected)
	})

	assert.ErrorIs(t, err, replicate.ErrRejected)
	assert.Equal(t, 1, callCount)
}
