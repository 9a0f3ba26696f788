package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"authflow_automation/domain/errs"
)

func TestUntilSatisfiedImmediately(t *testing.T) {
	calls := 0
	v, res, err := Until(context.Background(), Spec{Timeout: time.Second, PollInterval: 10 * time.Millisecond},
		func(ctx context.Context) (string, bool, error) {
			calls++
			return "ready", true, nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ready", v)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Polls)
}

func TestUntilZeroTimeoutPollsExactlyOnce(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Second} {
		calls := 0
		_, res, err := Until(context.Background(), Spec{Selector: "#never", Timeout: timeout},
			func(ctx context.Context) (int, bool, error) {
				calls++
				return 0, false, nil
			})

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrWaitTimeout)
		assert.Equal(t, 1, calls, "timeout %s", timeout)
		assert.Equal(t, 1, res.Polls)
	}
}

func TestUntilZeroTimeoutCanSucceed(t *testing.T) {
	_, err := Await(context.Background(), Spec{Timeout: 0}, func(ctx context.Context) (bool, error) {
		return true, nil
	})
	assert.NoError(t, err)
}

func TestUntilEventuallySatisfied(t *testing.T) {
	calls := 0
	v, res, err := Until(context.Background(), Spec{Timeout: 2 * time.Second, PollInterval: 5 * time.Millisecond},
		func(ctx context.Context) (int, bool, error) {
			calls++
			return calls, calls == 4, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, 4, res.Polls)
}

func TestUntilSwallowsTransientErrors(t *testing.T) {
	stale := errors.New("node is detached from document")
	calls := 0

	_, res, err := Until(context.Background(), Spec{Timeout: time.Second, PollInterval: 5 * time.Millisecond},
		func(ctx context.Context) (bool, bool, error) {
			calls++
			if calls < 3 {
				return false, false, errs.Transient(stale)
			}
			return true, true, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Polls)
	assert.ErrorIs(t, res.LastErr, stale)
}

func TestUntilTimeoutKeepsLastError(t *testing.T) {
	stale := errors.New("element not attached")
	timeout := 60 * time.Millisecond

	start := time.Now()
	_, err := Await(context.Background(), Spec{Selector: ".oxd-alert", Timeout: timeout, PollInterval: 10 * time.Millisecond},
		func(ctx context.Context) (bool, error) {
			return false, errs.Transient(stale)
		})
	elapsed := time.Since(start)

	var timeoutErr *errs.WaitTimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, ".oxd-alert", timeoutErr.Selector)
	assert.ErrorIs(t, err, stale)
	assert.GreaterOrEqual(t, timeoutErr.Polls, 2)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+500*time.Millisecond)
}

func TestUntilFatalErrorAbortsImmediately(t *testing.T) {
	calls := 0
	_, err := Await(context.Background(), Spec{Timeout: 5 * time.Second, PollInterval: 5 * time.Millisecond},
		func(ctx context.Context) (bool, error) {
			calls++
			return false, errs.ErrSessionClosed
		})

	assert.ErrorIs(t, err, errs.ErrSessionClosed)
	assert.NotErrorIs(t, err, errs.ErrWaitTimeout)
	assert.Equal(t, 1, calls)
}

func TestUntilContextCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	start := time.Now()
	_, err := Await(ctx, Spec{Selector: "#slow", Timeout: 10 * time.Second, PollInterval: 5 * time.Millisecond},
		func(ctx context.Context) (bool, error) {
			return false, nil
		})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "#slow")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestUntilDefaultPollInterval(t *testing.T) {
	calls := 0
	_, err := Await(context.Background(), Spec{Timeout: 3 * DefaultPollInterval / 2},
		func(ctx context.Context) (bool, error) {
			calls++
			return false, nil
		})

	require.ErrorIs(t, err, errs.ErrWaitTimeout)
	// first poll, one after DefaultPollInterval, and a final one at the deadline
	assert.Equal(t, 3, calls)
}
