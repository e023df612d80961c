package retry_test

import (
	"context"
	"testing"
	"time"

	"aurora-pvlogd/internal/errors"
	"aurora-pvlogd/internal/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	attempts := 0
	policy := retry.Bounded(5, time.Millisecond)

	err := policy.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New().New(errors.ErrOperationFailed)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsBoundedPolicy(t *testing.T) {
	attempts := 0
	policy := retry.Bounded(3, time.Millisecond)

	err := policy.Do(context.Background(), func() error {
		attempts++
		return errors.New().New(errors.ErrOperationFailed)
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrRetryExhausted, errors.CodeOf(err))
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	policy := retry.Unbounded(10 * time.Millisecond)

	err := policy.Do(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New().New(errors.ErrOperationFailed)
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrTimeout, errors.CodeOf(err))
	assert.Equal(t, 2, attempts)
}

func TestDoCancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := retry.Unbounded(time.Millisecond).Do(ctx, func() error {
		attempts++
		return nil
	})

	require.Error(t, err)
	assert.Zero(t, attempts)
}
