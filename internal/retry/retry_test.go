package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPolicyDoFirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := Policy{Attempts: 3, Interval: time.Hour}.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicyDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Policy{Attempts: 3, Interval: time.Millisecond}.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicyDoReturnsLastError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Policy{Attempts: 2, Interval: time.Millisecond}.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestPolicyDoZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := Policy{}.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("nope")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicyDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{Attempts: 10, Interval: time.Hour}.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("keep going")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPollStopsWhenDone(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), time.Millisecond, time.Second, func(_ context.Context, _ time.Duration) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPollDeadline(t *testing.T) {
	err := Poll(context.Background(), time.Millisecond, 20*time.Millisecond, func(_ context.Context, _ time.Duration) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, ErrDeadline)
}

func TestPollPropagatesCheckError(t *testing.T) {
	boom := errors.New("boom")
	err := Poll(context.Background(), time.Millisecond, time.Second, func(_ context.Context, _ time.Duration) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPollHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := Poll(ctx, time.Hour, time.Hour, func(_ context.Context, _ time.Duration) (bool, error) {
		cancel()
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollElapsedGrows(t *testing.T) {
	var last time.Duration
	err := Poll(context.Background(), 5*time.Millisecond, time.Second, func(_ context.Context, elapsed time.Duration) (bool, error) {
		require.GreaterOrEqual(t, elapsed, last)
		last = elapsed
		return elapsed > 10*time.Millisecond, nil
	})
	require.NoError(t, err)
}
