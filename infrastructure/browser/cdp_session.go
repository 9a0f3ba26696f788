package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"authflow_automation/domain/entities"
	"authflow_automation/domain/errs"
	"authflow_automation/domain/interfaces"
	"authflow_automation/infrastructure/config"
)

// cdpSession drives chrome or edge over the DevTools protocol. browserCtx
// carries the chromedp target; per-call contexts are derived from it and
// cancelled together with the caller's context.
type cdpSession struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	log           logrus.FieldLogger

	mu     sync.Mutex
	closed bool
}

type cdpElement struct {
	session *cdpSession
	node    *cdp.Node
}

// launchCDP - starts a local chrome/edge with the given profile directory
func launchCDP(ctx context.Context, cfg config.Config, profileDir string, log logrus.FieldLogger) (interfaces.Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if path := findBrowserBinary(cfg.Browser, cfg.BrowserPath); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	} else if cfg.Browser == entities.BrowserEdge {
		return nil, fmt.Errorf("%w: microsoft edge executable not found", errs.ErrUnsupportedBrowser)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Debugf))

	s := &cdpSession{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		log:           log,
	}

	if err := ctx.Err(); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}

	// the first Run allocates the browser and ties it to browserCtx
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.WithFields(logrus.Fields{
		"browser":  cfg.Browser,
		"headless": cfg.Headless,
	}).Info("CDP browser started")
	return s, nil
}

// run executes actions on the browser target, bounded by ctx
func (s *cdpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errs.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(s.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && s.browserCtx.Err() != nil {
		return fmt.Errorf("%w: %v", errs.ErrSessionClosed, err)
	}
	return classify(err)
}

func (s *cdpSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *cdpSession) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

func (s *cdpSession) Query(ctx context.Context, selector entities.Selector) ([]interfaces.Element, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Nodes(selector.Value, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}

	elements := make([]interfaces.Element, 0, len(nodes))
	for _, node := range nodes {
		elements = append(elements, &cdpElement{session: s, node: node})
	}
	return elements, nil
}

func (s *cdpSession) Click(ctx context.Context, el interfaces.Element) error {
	node, err := s.node(el)
	if err != nil {
		return err
	}
	return s.run(ctx, chromedp.MouseClickNode(node))
}

func (s *cdpSession) ClearAndType(ctx context.Context, el interfaces.Element, text string) error {
	node, err := s.node(el)
	if err != nil {
		return err
	}
	ids := []cdp.NodeID{node.NodeID}
	return s.run(ctx,
		chromedp.Clear(ids, chromedp.ByNodeID),
		chromedp.SendKeys(ids, text, chromedp.ByNodeID),
	)
}

func (s *cdpSession) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close - cancelling the chromedp contexts closes the browser and its allocator
func (s *cdpSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errs.ErrSessionClosed
	}
	s.closed = true
	s.mu.Unlock()

	err := ignoreClosed(chromedp.Cancel(s.browserCtx))
	s.cancelBrowser()
	s.cancelAlloc()

	s.log.Info("CDP browser closed")
	return err
}

func (s *cdpSession) node(el interfaces.Element) (*cdp.Node, error) {
	ce, ok := el.(*cdpElement)
	if !ok || ce.session != s {
		return nil, fmt.Errorf("element %T does not belong to this session", el)
	}
	return ce.node, nil
}

func (e *cdpElement) State(ctx context.Context) (entities.ElementState, error) {
	var raw map[string]interface{}
	err := e.session.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.CallFunctionOnNode(ctx, e.node, stateFunction, &raw)
	}))
	if err != nil {
		return entities.ElementState{}, err
	}
	return parseState(raw)
}

func (e *cdpElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.session.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.CallFunctionOnNode(ctx, e.node, textFunction, &text)
	}))
	return text, err
}
