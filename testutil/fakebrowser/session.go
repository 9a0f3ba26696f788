// Package fakebrowser is an in-memory interfaces.Session for tests.
//
// The fake document is a set of elements registered under css selector
// strings. A query for "a, b" returns the union of the elements registered
// under "a" and "b", in that order.
package fakebrowser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"authflow_automation/domain/entities"
	"authflow_automation/domain/errs"
	"authflow_automation/domain/interfaces"
)

// PNG is the screenshot payload returned by the fake
var PNG = []byte("\x89PNG\r\n\x1a\nfake")

// Element is a fake DOM element
type Element struct {
	Name     string
	Snapshot entities.ElementState
	Content  string
	Value    string

	// AppearAt hides the element from queries until the given time
	AppearAt time.Time
	// StateErr is returned by State instead of the snapshot
	StateErr error
	// OnClick runs after a successful click
	OnClick func()

	detached bool
}

// NewElement returns a visible, enabled element
func NewElement(name, text string) *Element {
	return &Element{
		Name:    name,
		Content: text,
		Snapshot: entities.ElementState{
			Attached: true,
			Visible:  true,
			Enabled:  true,
			Center:   entities.Position{X: 100, Y: 100},
			Width:    120,
			Height:   32,
		},
	}
}

// NewInput returns a visible, enabled and editable element
func NewInput(name string) *Element {
	el := NewElement(name, "")
	el.Snapshot.Editable = true
	return el
}

// Hidden marks the element as not rendered
func (e *Element) Hidden() *Element {
	e.Snapshot.Visible = false
	e.Snapshot.Width, e.Snapshot.Height = 0, 0
	return e
}

// Disabled marks the element as disabled
func (e *Element) Disabled() *Element {
	e.Snapshot.Enabled = false
	return e
}

// Covered marks the element as obscured by another element
func (e *Element) Covered() *Element {
	e.Snapshot.Obscured = true
	return e
}

// After delays the element's appearance
func (e *Element) After(d time.Duration) *Element {
	e.AppearAt = time.Now().Add(d)
	return e
}

func (e *Element) State(ctx context.Context) (entities.ElementState, error) {
	if err := ctx.Err(); err != nil {
		return entities.ElementState{}, err
	}
	if e.detached {
		return entities.ElementState{}, errs.Transient(fmt.Errorf("stale element %s", e.Name))
	}
	if e.StateErr != nil {
		return entities.ElementState{}, e.StateErr
	}
	return e.Snapshot, nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.detached {
		return "", errs.Transient(fmt.Errorf("stale element %s", e.Name))
	}
	if !e.Snapshot.Visible {
		return "", nil
	}
	return e.Content, nil
}

func (e *Element) visible(now time.Time) bool {
	return !e.detached && !now.Before(e.AppearAt)
}

// Session is the fake browser. It is safe for concurrent use so tests can
// close it from another goroutine.
type Session struct {
	mu       sync.Mutex
	url      string
	dom      map[string][]*Element
	closed   bool
	queryErr map[string][]error

	// OnNavigate replaces the default navigation, which only sets the URL
	OnNavigate func(url string)
	// NavigateErr is returned by Navigate when set
	NavigateErr error
	// ScreenshotErr is returned by CaptureScreenshot when set
	ScreenshotErr error

	Queries     int
	Clicks      []string
	Typed       map[string]string
	Navigations []string
}

var _ interfaces.Session = (*Session)(nil)

// New returns an empty fake session at about:blank
func New() *Session {
	return &Session{
		url:      "about:blank",
		dom:      map[string][]*Element{},
		queryErr: map[string][]error{},
		Typed:    map[string]string{},
	}
}

// Add registers el under every given selector
func (s *Session) Add(el *Element, selectors ...string) *Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sel := range selectors {
		s.dom[sel] = append(s.dom[sel], el)
	}
	return el
}

// Remove detaches every element registered under selector
func (s *Session) Remove(selector string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, el := range s.dom[selector] {
		el.detached = true
	}
	delete(s.dom, selector)
}

// Reset detaches every element, as a page load would
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, els := range s.dom {
		for _, el := range els {
			el.detached = true
		}
	}
	s.dom = map[string][]*Element{}
}

// FailQueries makes the next queries of selector fail with failures, in order
func (s *Session) FailQueries(selector string, failures ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryErr[selector] = append(s.queryErr[selector], failures...)
}

// SetURL changes the current URL without touching the document
func (s *Session) SetURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = url
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errs.ErrSessionClosed
	}
	s.Navigations = append(s.Navigations, url)
	if s.NavigateErr != nil {
		s.mu.Unlock()
		return s.NavigateErr
	}
	hook := s.OnNavigate
	if hook == nil {
		s.url = url
	}
	s.mu.Unlock()

	if hook != nil {
		hook(url)
	}
	return ctx.Err()
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", errs.ErrSessionClosed
	}
	return s.url, ctx.Err()
}

func (s *Session) Query(ctx context.Context, selector entities.Selector) ([]interfaces.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Queries++
	if s.closed {
		return nil, errs.ErrSessionClosed
	}
	if queued := s.queryErr[selector.Value]; len(queued) > 0 {
		s.queryErr[selector.Value] = queued[1:]
		return nil, queued[0]
	}

	now := time.Now()
	var found []interfaces.Element
	for _, part := range strings.Split(selector.Value, ",") {
		for _, el := range s.dom[strings.TrimSpace(part)] {
			if el.visible(now) {
				found = append(found, el)
			}
		}
	}
	return found, nil
}

func (s *Session) Click(ctx context.Context, el interfaces.Element) error {
	fake, err := s.element(el)
	if err != nil {
		return err
	}
	state, err := fake.State(ctx)
	if err != nil {
		return err
	}
	if !state.Clickable() {
		return fmt.Errorf("element %s is not clickable at point (%.0f, %.0f)", fake.Name, state.Center.X, state.Center.Y)
	}

	s.mu.Lock()
	s.Clicks = append(s.Clicks, fake.Name)
	s.mu.Unlock()

	if fake.OnClick != nil {
		fake.OnClick()
	}
	return nil
}

func (s *Session) ClearAndType(ctx context.Context, el interfaces.Element, text string) error {
	fake, err := s.element(el)
	if err != nil {
		return err
	}
	state, err := fake.State(ctx)
	if err != nil {
		return err
	}
	if !state.Editable {
		return fmt.Errorf("element %s is not editable", fake.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fake.Value = text
	s.Typed[fake.Name] = text
	return nil
}

func (s *Session) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errs.ErrSessionClosed
	}
	if s.ScreenshotErr != nil {
		return nil, s.ScreenshotErr
	}
	return PNG, ctx.Err()
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("session already closed")
	}
	s.closed = true
	return nil
}

// Closed reports whether Close was called
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// URL returns the current URL
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *Session) element(el interfaces.Element) (*Element, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, errs.ErrSessionClosed
	}

	fake, ok := el.(*Element)
	if !ok {
		return nil, fmt.Errorf("foreign element %T", el)
	}
	return fake, nil
}
