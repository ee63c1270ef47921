package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	base := 5 * time.Second
	assert.Equal(t, time.Duration(0), Backoff(0, base, 0))
	assert.Equal(t, 5*time.Second, Backoff(1, base, 0))
	assert.Equal(t, 10*time.Second, Backoff(2, base, 0))
	assert.Equal(t, 20*time.Second, Backoff(3, base, 0))
	assert.Equal(t, 15*time.Second, Backoff(3, base, 15*time.Second))
	assert.Equal(t, 15*time.Second, Backoff(30, base, 15*time.Second))
	assert.Equal(t, time.Duration(0), Backoff(2, 0, time.Second))
}

func TestBackoffOptions(t *testing.T) {
	retryable := errors.New("retryable")
	fatal := errors.New("fatal")

	t.Run("stops at attempt ceiling", func(t *testing.T) {
		calls := 0
		err := retry.Do(func() error {
			calls++
			return retryable
		}, BackoffOptions(context.Background(), 3, time.Millisecond, 0, func(err error) bool {
			return errors.Is(err, retryable)
		})...)
		assert.ErrorIs(t, err, retryable)
		assert.Equal(t, 3, calls)
	})

	t.Run("non retryable error stops immediately", func(t *testing.T) {
		calls := 0
		err := retry.Do(func() error {
			calls++
			return fatal
		}, BackoffOptions(context.Background(), 3, time.Millisecond, 0, func(err error) bool {
			return errors.Is(err, retryable)
		})...)
		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, calls)
	})


	t.Run("context cancellation interrupts the wait", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		start := time.Now()
		err := retry.Do(func() error {
			return retryable
		}, BackoffOptions(ctx, 3, time.Hour, 0, nil)...)
		assert.Error(t, err)
		assert.Less(t, time.Since(start), time.Minute)
	})
}
