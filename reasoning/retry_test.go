package reasoning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	got, err := RetryWithBackoff(context.Background(), discardLogger(), 3, 10*time.Millisecond, func(context.Context) (string, error) {
		attempts++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	got, err := RetryWithBackoff(context.Background(), discardLogger(), 5, time.Millisecond, func(context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("temporary error")
		}
		return attempts, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	_, err := RetryWithBackoff(context.Background(), discardLogger(), 3, time.Millisecond, func(context.Context) (int, error) {
		attempts++
		return 0, expectedErr
	})
	assert.Equal(t, expectedErr, err, "should return the last error")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := RetryWithBackoff(ctx, discardLogger(), 10, 10*time.Millisecond, func(context.Context) (int, error) {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return 0, errors.New("error")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts, "should stop when context is canceled")
}

func TestRetryWithBackoff_ExponentialBackoff(t *testing.T) {
	attempts := 0
	var delays []time.Duration
	last := time.Now()

	_, err := RetryWithBackoff(context.Background(), discardLogger(), 5, 10*time.Millisecond, func(context.Context) (int, error) {
		attempts++
		if attempts > 1 {
			delays = append(delays, time.Since(last))
		}
		last = time.Now()
		if attempts < 4 {
			return 0, errors.New("error")
		}
		return 0, nil
	})
	require.NoError(t, err)
	require.Len(t, delays, 3)
	assert.GreaterOrEqual(t, delays[0], 10*time.Millisecond)
	assert.GreaterOrEqual(t, delays[1], 20*time.Millisecond)
	assert.GreaterOrEqual(t, delays[2], 40*time.Millisecond)
}

func TestRetryWithBackoff_ZeroMaxAttempts(t *testing.T) {
	called := false
	_, err := RetryWithBackoff(context.Background(), nil, 0, time.Millisecond, func(context.Context) (int, error) {
		called = true
		return 0, nil
	})
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	assert.False(t, called)
}
