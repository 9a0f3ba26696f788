// Package errs holds the error taxonomy shared by the wait engine, the element
// locator, the page facade and the browser sessions.
package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrWaitTimeout is returned when a predicate is never satisfied in budget
	ErrWaitTimeout = errors.New("wait timed out")

	// ErrElementNotFound is returned when no visible element matches a selector
	ErrElementNotFound = errors.New("element not found")

	// ErrElementNotInteractable is returned when an element never becomes clickable
	ErrElementNotInteractable = errors.New("element not interactable")

	// ErrActionFailed is returned when a click or input could not be performed
	ErrActionFailed = errors.New("action failed")

	// ErrCaptureFailed is returned when a screenshot cannot be taken or stored
	ErrCaptureFailed = errors.New("screenshot capture failed")

	// ErrNavigationFailed is returned when the browser cannot load a URL
	ErrNavigationFailed = errors.New("navigation failed")

	// ErrTransient marks not-yet-rendered or stale element conditions.
	// The wait engine treats it as "not satisfied yet".
	ErrTransient = errors.New("transient browser condition")

	// ErrSessionClosed is returned once the browser connection is gone
	ErrSessionClosed = errors.New("browser session closed")

	// ErrUnsupportedBrowser is returned for unknown browser/driver combinations
	ErrUnsupportedBrowser = errors.New("unsupported browser")
)

// Transient wraps err so that errors.Is(err, ErrTransient) holds.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() []error { return []error{ErrTransient, e.err} }

// IsTransient reports whether err should be retried by a poller.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// WaitTimeoutError is the final failure of a wait. LastErr keeps the last
// transient error seen while polling, for diagnostics.
type WaitTimeoutError struct {
	Selector string
	Elapsed  time.Duration
	Polls    int
	LastErr  error
}

func (e *WaitTimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s (%d polls)", e.Elapsed.Round(time.Millisecond), e.Polls)
	if e.Selector != "" {
		msg = fmt.Sprintf("waiting for %q: %s", e.Selector, msg)
	}
	if e.LastErr != nil {
		msg += ": last error: " + e.LastErr.Error()
	}
	return msg
}

func (e *WaitTimeoutError) Is(target error) bool { return target == ErrWaitTimeout }

// Unwrap exposes the last poll error without its transient marker: a wait
// that gave up is final and must not be retried by an outer poller.
func (e *WaitTimeoutError) Unwrap() error {
	var t *transientError
	if errors.As(e.LastErr, &t) {
		return t.err
	}
	return e.LastErr
}

// LookupError is returned by the locator. Kind is ErrElementNotFound or
// ErrElementNotInteractable.
type LookupError struct {
	Kind     error
	Selector string
	Timeout  time.Duration
	Cause    error
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("%v: %q within %s", e.Kind, e.Selector, e.Timeout)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LookupError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// ActionFailedError wraps any fault raised while clicking or typing.
type ActionFailedError struct {
	Action   string
	Selector string
	Cause    error
}

func (e *ActionFailedError) Error() string {
	return fmt.Sprintf("%s %q failed: %v", e.Action, e.Selector, e.Cause)
}

func (e *ActionFailedError) Is(target error) bool { return target == ErrActionFailed }

func (e *ActionFailedError) Unwrap() error { return e.Cause }

// CaptureError is returned when a screenshot cannot be captured or written.
type CaptureError struct {
	Name  string
	Cause error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture screenshot %q: %v", e.Name, e.Cause)
}

func (e *CaptureError) Is(target error) bool { return target == ErrCaptureFailed }

func (e *CaptureError) Unwrap() error { return e.Cause }

// NavigationError is returned when a page fails to load.
type NavigationError struct {
	URL   string
	Cause error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate to %s: %v", e.URL, e.Cause)
}

func (e *NavigationError) Is(target error) bool { return target == ErrNavigationFailed }

func (e *NavigationError) Unwrap() error { return e.Cause }
