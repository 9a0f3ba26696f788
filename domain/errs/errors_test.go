package errs

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransient(t *testing.T) {
	base := errors.New("node is detached from document")
	err := Transient(base)

	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, base.Error(), err.Error())
	assert.True(t, IsTransient(fmt.Errorf("query: %w", err)))

	assert.Nil(t, Transient(nil))
	assert.False(t, IsTransient(base))
	assert.False(t, IsTransient(ErrSessionClosed))
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("boom")

	testCases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"wait timeout", &WaitTimeoutError{Selector: "#a", LastErr: cause}, ErrWaitTimeout},
		{"lookup not found", &LookupError{Kind: ErrElementNotFound, Selector: "#a"}, ErrElementNotFound},
		{"lookup not interactable", &LookupError{Kind: ErrElementNotInteractable, Selector: "#a", Cause: cause}, ErrElementNotInteractable},
		{"action failed", &ActionFailedError{Action: "click", Selector: "#a", Cause: cause}, ErrActionFailed},
		{"capture", &CaptureError{Name: "shot", Cause: cause}, ErrCaptureFailed},
		{"navigation", &NavigationError{URL: "http://x", Cause: cause}, ErrNavigationFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.sentinel)
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tc.err), tc.sentinel)
			assert.NotEmpty(t, tc.err.Error())
		})
	}
}

func TestCausesAreReachable(t *testing.T) {
	cause := errors.New("element is disabled")

	err := &ActionFailedError{Action: "input", Selector: "#user", Cause: &LookupError{
		Kind:     ErrElementNotFound,
		Selector: "#user",
		Timeout:  time.Second,
		Cause:    &WaitTimeoutError{Selector: "#user", LastErr: cause},
	}}

	assert.ErrorIs(t, err, ErrActionFailed)
	assert.ErrorIs(t, err, ErrElementNotFound)
	assert.ErrorIs(t, err, ErrWaitTimeout)
	assert.ErrorIs(t, err, cause)

	var timeout *WaitTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, "#user", timeout.Selector)
}

func TestWaitTimeoutErrorMessage(t *testing.T) {
	err := &WaitTimeoutError{Selector: ".oxd-alert", Elapsed: 1500 * time.Millisecond, Polls: 8}
	assert.Equal(t, `waiting for ".oxd-alert": timed out after 1.5s (8 polls)`, err.Error())

	err.LastErr = errors.New("stale")
	assert.Contains(t, err.Error(), "last error: stale")
}

func TestWaitTimeoutIsNotTransient(t *testing.T) {
	stale := errors.New("stale element reference")
	timeout := &WaitTimeoutError{Selector: ".row", Polls: 3, LastErr: Transient(stale)}

	assert.False(t, IsTransient(timeout))
	assert.ErrorIs(t, timeout, ErrWaitTimeout)
	assert.ErrorIs(t, timeout, stale)
	assert.Contains(t, timeout.Error(), "stale element reference")

	wrapped := &WaitTimeoutError{Selector: ".row", LastErr: fmt.Errorf("query: %w", Transient(stale))}
	assert.False(t, IsTransient(wrapped))
	assert.ErrorIs(t, wrapped, stale)

	lookup := &LookupError{Kind: ErrElementNotFound, Selector: ".row", Cause: timeout}
	assert.False(t, IsTransient(lookup))
	assert.ErrorIs(t, lookup, stale)
}
