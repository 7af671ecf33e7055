package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return nil
		}, RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Millisecond})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return errors.New("always fails")
		}, RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		permanent := &RetryableError{Err: errors.New("permanent"), Retryable: false}
		err := WithRetry(context.Background(), func() error {
			calls++
			return permanent
		}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Millisecond})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := WithRetry(ctx, func() error {
			return errors.New("transient")
		}, RetryOptions{MaxAttempts: 3, InitialDelay: time.Minute})

		assert.ErrorIs(t, err, context.Canceled)
	})
}
