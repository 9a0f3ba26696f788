package interfaces

import (
	"context"

	"authflow_automation/domain/entities"
)

// Session owns one live browser connection. A Session must not be shared
// between goroutines; each parallel worker acquires its own.
//
// Implementations wrap not-yet-rendered and stale-element conditions with
// errs.ErrTransient and a dead connection with errs.ErrSessionClosed.
type Session interface {
	// Navigate loads url in the current page
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the current page URL
	CurrentURL(ctx context.Context) (string, error)

	// Query returns the elements currently matching selector, possibly none
	Query(ctx context.Context, selector entities.Selector) ([]Element, error)

	// Click clicks el at its centre point
	Click(ctx context.Context, el Element) error

	// ClearAndType replaces the content of el with text
	ClearAndType(ctx context.Context, el Element, text string) error

	// CaptureScreenshot returns a PNG of the current viewport
	CaptureScreenshot(ctx context.Context) ([]byte, error)

	// Close tears the browser down
	Close() error
}

// Element is a transient reference into the live document. It is valid only
// until the next navigation or DOM mutation.
type Element interface {
	// State reads visibility, enablement and hit-target information
	State(ctx context.Context) (entities.ElementState, error)

	// Text returns the rendered text of the element
	Text(ctx context.Context) (string, error)
}
