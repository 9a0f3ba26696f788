// Package facade exposes the page actions used by page objects and scenarios:
// find, click, type, read text, presence checks and screenshots.
package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"authflow_automation/application/locator"
	"authflow_automation/domain/entities"
	"authflow_automation/domain/errs"
	"authflow_automation/domain/interfaces"
)

// DefaultScreenshotName is used when TakeScreenshot gets an empty name
const DefaultScreenshotName = "screenshot"

// Timeouts bounds the waits performed by the facade
type Timeouts struct {
	// Explicit bounds element lookups before an action
	Explicit time.Duration
	// PageLoad bounds navigation
	PageLoad time.Duration
	// Poll is the wait engine poll interval
	Poll time.Duration
}

// Page performs actions against one session. It keeps no state between calls.
type Page struct {
	session  interfaces.Session
	locator  *locator.Locator
	store    interfaces.ArtifactStore
	redactor interfaces.Redactor
	log      logrus.FieldLogger
	timeouts Timeouts
	now      func() time.Time
}

// NewPage binds a facade to session. store may be nil when screenshots are
// not needed; redactor may be nil to log typed text verbatim.
func NewPage(session interfaces.Session, store interfaces.ArtifactStore, redactor interfaces.Redactor, log logrus.FieldLogger, timeouts Timeouts) *Page {
	return &Page{
		session:  session,
		locator:  locator.New(session, log, timeouts.Poll),
		store:    store,
		redactor: redactor,
		log:      log,
		timeouts: timeouts,
		now:      time.Now,
	}
}

// Locator returns the locator bound to the page session
func (p *Page) Locator() *locator.Locator {
	return p.locator
}

// Timeouts returns the configured wait budgets
func (p *Page) Timeouts() Timeouts {
	return p.timeouts
}

// FindElement waits for a visible element within the explicit wait
func (p *Page) FindElement(ctx context.Context, selector entities.Selector) (interfaces.Element, error) {
	p.log.WithField("selector", selector.Value).Debug("Waiting for element")
	el, err := p.locator.FindOne(ctx, selector, p.timeouts.Explicit)
	if err != nil {
		p.logLookupFailure(ctx, selector, err)
		return nil, err
	}
	return el, nil
}

// FindElements returns every element present within the explicit wait,
// or an empty slice.
func (p *Page) FindElements(ctx context.Context, selector entities.Selector) []interfaces.Element {
	els := p.locator.FindMany(ctx, selector, p.timeouts.Explicit)
	p.log.WithField("selector", selector.Value).Debugf("Found %d elements", len(els))
	return els
}

// Click waits for the element to be clickable, then clicks it
func (p *Page) Click(ctx context.Context, selector entities.Selector) error {
	el, err := p.locator.WaitClickable(ctx, selector, p.timeouts.Explicit)
	if err != nil {
		p.logLookupFailure(ctx, selector, err)
		return &errs.ActionFailedError{Action: "click", Selector: selector.Value, Cause: err}
	}

	if err := p.session.Click(ctx, el); err != nil {
		p.log.WithField("selector", selector.Value).WithError(err).Error("Error clicking element")
		return &errs.ActionFailedError{Action: "click", Selector: selector.Value, Cause: err}
	}

	p.log.WithField("selector", selector.Value).Debug("Clicked element")
	return nil
}

// InputText replaces the content of a visible, editable element with text.
// It does not retry.
func (p *Page) InputText(ctx context.Context, selector entities.Selector, text string) error {
	el, err := p.locator.FindOne(ctx, selector, p.timeouts.Explicit)
	if err != nil {
		p.logLookupFailure(ctx, selector, err)
		return &errs.ActionFailedError{Action: "input", Selector: selector.Value, Cause: err}
	}

	state, err := el.State(ctx)
	if err != nil {
		return &errs.ActionFailedError{Action: "input", Selector: selector.Value, Cause: err}
	}
	if !state.Editable {
		return &errs.ActionFailedError{Action: "input", Selector: selector.Value, Cause: errors.New("element is not editable")}
	}

	if err := p.session.ClearAndType(ctx, el, text); err != nil {
		p.log.WithField("selector", selector.Value).WithError(err).Error("Error inputting text")
		return &errs.ActionFailedError{Action: "input", Selector: selector.Value, Cause: err}
	}

	p.log.WithField("selector", selector.Value).Debugf("Input text: %s", p.loggable(selector, text))
	return nil
}

// GetText returns the text of the first visible element matching selector.
//
// Absence and read failures both yield "", so callers cannot tell an absent
// element from an empty one. Use GetTextStrict when that matters.
func (p *Page) GetText(ctx context.Context, selector entities.Selector) string {
	text, err := p.GetTextStrict(ctx, selector)
	if err != nil {
		p.log.WithField("selector", selector.Value).WithError(err).Debug("No text read")
		return ""
	}
	return text
}

// GetTextStrict is GetText with the lookup or read error exposed
func (p *Page) GetTextStrict(ctx context.Context, selector entities.Selector) (string, error) {
	el, err := p.locator.FindOne(ctx, selector, p.timeouts.Explicit)
	if err != nil {
		return "", err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", fmt.Errorf("read text of %q: %w", selector.Value, err)
	}
	p.log.WithField("selector", selector.Value).Debugf("Got text: %s", text)
	return text, nil
}

// IsElementPresent reports whether a visible element appears within timeout.
// A zero timeout checks once.
func (p *Page) IsElementPresent(ctx context.Context, selector entities.Selector, timeout time.Duration) bool {
	return p.locator.IsPresent(ctx, selector, timeout)
}

// TakeScreenshot captures the viewport and stores it as
// <name>_<YYYYMMDD_HHMMSS>.png. It returns the stored path.
func (p *Page) TakeScreenshot(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = DefaultScreenshotName
	}
	if p.store == nil {
		return "", &errs.CaptureError{Name: name, Cause: errors.New("no artifact store configured")}
	}

	data, err := p.session.CaptureScreenshot(ctx)
	if err != nil {
		return "", &errs.CaptureError{Name: name, Cause: err}
	}

	filename := fmt.Sprintf("%s_%s.png", name, p.now().Format("20060102_150405"))
	path, err := p.store.Save(filename, data)
	if err != nil {
		return "", &errs.CaptureError{Name: name, Cause: err}
	}

	p.log.Infof("Screenshot saved: %s", path)
	return path, nil
}

// Navigate loads url, bounded by the page load timeout
func (p *Page) Navigate(ctx context.Context, url string) error {
	if p.timeouts.PageLoad > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeouts.PageLoad)
		defer cancel()
	}

	p.log.Infof("Navigating to %s", url)
	if err := p.session.Navigate(ctx, url); err != nil {
		return &errs.NavigationError{URL: url, Cause: err}
	}
	return nil
}

// CurrentURL returns the URL of the current page
func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	return p.session.CurrentURL(ctx)
}

func (p *Page) loggable(selector entities.Selector, text string) string {
	if p.redactor == nil {
		return text
	}
	return p.redactor.Redact(selector, text)
}

func (p *Page) logLookupFailure(ctx context.Context, selector entities.Selector, err error) {
	entry := p.log.WithField("selector", selector.Value).WithError(err)
	if url, urlErr := p.session.CurrentURL(ctx); urlErr == nil {
		entry = entry.WithField("url", url)
	}
	if errors.Is(err, errs.ErrElementNotInteractable) {
		entry.Error("Element not clickable")
		return
	}
	entry.Error("Element not found")
}
