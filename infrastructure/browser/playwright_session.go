package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"authflow_automation/domain/entities"
	"authflow_automation/domain/errs"
	"authflow_automation/domain/interfaces"
	"authflow_automation/infrastructure/config"
)

type playwrightSession struct {
	pw      *playwright.Playwright
	context playwright.BrowserContext
	page    playwright.Page
	log     logrus.FieldLogger

	mu     sync.Mutex
	closed bool
}

type playwrightElement struct {
	handle playwright.ElementHandle
}

// launchPlaywright - starts a persistent playwright context in profileDir
func launchPlaywright(ctx context.Context, cfg config.Config, profileDir string, log logrus.FieldLogger) (interfaces.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browserType := pw.Chromium
	opts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(cfg.Headless),
		Viewport: &playwright.Size{
			Width:  cfg.WindowWidth,
			Height: cfg.WindowHeight,
		},
		IgnoreHttpsErrors: playwright.Bool(true),
	}

	switch cfg.Browser {
	case entities.BrowserFirefox:
		browserType = pw.Firefox
	case entities.BrowserEdge:
		opts.Channel = playwright.String("msedge")
		opts.Args = chromiumArgs(cfg)
	default:
		opts.Args = chromiumArgs(cfg)
	}
	if cfg.BrowserPath != "" {
		opts.ExecutablePath = playwright.String(cfg.BrowserPath)
	}

	browserContext, err := browserType.LaunchPersistentContext(profileDir, opts)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to launch browser: %w", err), pw.Stop())
	}

	var page playwright.Page
	if pages := browserContext.Pages(); len(pages) > 0 {
		page = pages[0]
	} else if page, err = browserContext.NewPage(); err != nil {
		err = fmt.Errorf("failed to create page: %w", err)
		return nil, multierr.Combine(err, browserContext.Close(), pw.Stop())
	}

	page.SetDefaultTimeout(float64(cfg.ExplicitWait.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(cfg.PageLoadTimeout.Milliseconds()))

	log.WithFields(logrus.Fields{
		"browser":  cfg.Browser,
		"headless": cfg.Headless,
	}).Info("Playwright browser started")

	return &playwrightSession{
		pw:      pw,
		context: browserContext,
		page:    page,
		log:     log,
	}, nil
}

func (s *playwrightSession) alive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errs.ErrSessionClosed
	}
	return nil
}

// Navigate - loads url and waits for the load event
func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	if err := s.alive(ctx); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(timeoutMillis(ctx, defaultActionTimeout)),
	})
	return classify(err)
}

func (s *playwrightSession) CurrentURL(ctx context.Context) (string, error) {
	if err := s.alive(ctx); err != nil {
		return "", err
	}
	return s.page.URL(), nil
}

func (s *playwrightSession) Query(ctx context.Context, selector entities.Selector) ([]interfaces.Element, error) {
	if err := s.alive(ctx); err != nil {
		return nil, err
	}
	handles, err := s.page.QuerySelectorAll(selector.Value)
	if err != nil {
		return nil, classify(err)
	}

	elements := make([]interfaces.Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &playwrightElement{handle: h})
	}
	return elements, nil
}

func (s *playwrightSession) Click(ctx context.Context, el interfaces.Element) error {
	handle, err := s.handle(ctx, el)
	if err != nil {
		return err
	}
	return classify(handle.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(timeoutMillis(ctx, defaultActionTimeout)),
	}))
}

// ClearAndType - fill replaces the current value
func (s *playwrightSession) ClearAndType(ctx context.Context, el interfaces.Element, text string) error {
	handle, err := s.handle(ctx, el)
	if err != nil {
		return err
	}
	return classify(handle.Fill(text, playwright.ElementHandleFillOptions{
		Timeout: playwright.Float(timeoutMillis(ctx, defaultActionTimeout)),
	}))
}

func (s *playwrightSession) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	if err := s.alive(ctx); err != nil {
		return nil, err
	}
	data, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Timeout: playwright.Float(timeoutMillis(ctx, defaultActionTimeout)),
	})
	return data, classify(err)
}

// Close - closes the browser context and stops the playwright driver
func (s *playwrightSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errs.ErrSessionClosed
	}
	s.closed = true
	s.mu.Unlock()

	var closeErr error
	if err := ignoreClosed(s.context.Close()); err != nil {
		closeErr = multierr.Append(closeErr, fmt.Errorf("failed to close context: %w", err))
	}
	if err := s.pw.Stop(); err != nil {
		closeErr = multierr.Append(closeErr, fmt.Errorf("failed to stop playwright: %w", err))
	}

	s.log.Info("Playwright browser closed")
	return closeErr
}

func (s *playwrightSession) handle(ctx context.Context, el interfaces.Element) (playwright.ElementHandle, error) {
	if err := s.alive(ctx); err != nil {
		return nil, err
	}
	pe, ok := el.(*playwrightElement)
	if !ok {
		return nil, fmt.Errorf("element %T does not belong to a playwright session", el)
	}
	return pe.handle, nil
}

func (e *playwrightElement) State(ctx context.Context) (entities.ElementState, error) {
	if err := ctx.Err(); err != nil {
		return entities.ElementState{}, err
	}
	raw, err := e.handle.Evaluate(stateFunction)
	if err != nil {
		return entities.ElementState{}, classify(err)
	}
	return parseState(raw)
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := e.handle.InnerText()
	return text, classify(err)
}
