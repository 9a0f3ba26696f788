package browser

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"go.uber.org/multierr"

	"authflow_automation/domain/entities"
	"authflow_automation/domain/errs"
	"authflow_automation/domain/interfaces"
	"authflow_automation/infrastructure/config"
)

type webDriverSession struct {
	wd      selenium.WebDriver
	service *selenium.Service
	log     logrus.FieldLogger

	mu     sync.Mutex
	closed bool
}

type webDriverElement struct {
	session *webDriverSession
	elem    selenium.WebElement
}

// launchWebDriver - connects to cfg.WebDriverURL, or starts a local driver
// service when no URL is configured
func launchWebDriver(ctx context.Context, cfg config.Config, profileDir string, log logrus.FieldLogger) (interfaces.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	remote := cfg.WebDriverURL != ""
	caps, err := webDriverCapabilities(cfg, profileDir, remote)
	if err != nil {
		return nil, err
	}

	url := cfg.WebDriverURL
	var service *selenium.Service
	if !remote {
		driverPath, err := findDriver(cfg.Browser, cfg.DriverPath)
		if err != nil {
			return nil, fmt.Errorf("failed to find webdriver: %w", err)
		}
		log.Infof("Using WebDriver at: %s", driverPath)

		port, err := freePort()
		if err != nil {
			return nil, err
		}

		if cfg.Browser == entities.BrowserFirefox {
			service, err = selenium.NewGeckoDriverService(driverPath, port)
			url = fmt.Sprintf("http://localhost:%d", port)
		} else {
			service, err = selenium.NewChromeDriverService(driverPath, port)
			url = fmt.Sprintf("http://localhost:%d/wd/hub", port)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to start webdriver: %w", err)
		}
	}

	wd, err := selenium.NewRemote(caps, url)
	if err != nil {
		if service != nil {
			err = multierr.Append(err, service.Stop())
		}
		if strings.Contains(err.Error(), "cannot find") && strings.Contains(err.Error(), "binary") {
			return nil, fmt.Errorf("failed to create webdriver: %s browser not found, set E2E_BROWSER_PATH: %w", cfg.Browser, err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	s := &webDriverSession{wd: wd, service: service, log: log}
	if err := wd.SetPageLoadTimeout(cfg.PageLoadTimeout); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to set page load timeout: %w", err), s.Close())
	}

	log.WithFields(logrus.Fields{
		"browser":  cfg.Browser,
		"headless": cfg.Headless,
		"remote":   remote,
	}).Info("WebDriver browser started")
	return s, nil
}

// webDriverCapabilities - builds browser specific capabilities. A remote
// browser cannot use the local profile directory.
func webDriverCapabilities(cfg config.Config, profileDir string, remote bool) (selenium.Capabilities, error) {
	switch cfg.Browser {
	case entities.BrowserChrome:
		args := chromiumArgs(cfg)
		if !remote {
			args = append(args, "--user-data-dir="+profileDir)
		}
		caps := selenium.Capabilities{"browserName": "chrome"}
		chromeCaps := chrome.Capabilities{Args: args}
		if !remote {
			chromeCaps.Path = findBrowserBinary(cfg.Browser, cfg.BrowserPath)
		}
		caps.AddChrome(chromeCaps)
		return caps, nil

	case entities.BrowserEdge:
		args := chromiumArgs(cfg)
		edgeOptions := map[string]interface{}{}
		if !remote {
			args = append(args, "--user-data-dir="+profileDir)
			if path := findBrowserBinary(cfg.Browser, cfg.BrowserPath); path != "" {
				edgeOptions["binary"] = path
			}
		}
		edgeOptions["args"] = args
		return selenium.Capabilities{
			"browserName":    "MicrosoftEdge",
			"ms:edgeOptions": edgeOptions,
		}, nil

	case entities.BrowserFirefox:
		caps := selenium.Capabilities{"browserName": "firefox"}
		ffCaps := firefox.Capabilities{Args: firefoxArgs(cfg)}
		if !remote {
			ffCaps.Args = append(ffCaps.Args, "-profile", profileDir)
			if cfg.BrowserPath != "" {
				ffCaps.Binary = cfg.BrowserPath
			}
		}
		caps.AddFirefox(ffCaps)
		return caps, nil
	}
	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedBrowser, cfg.Browser)
}

// freePort - asks the kernel for an unused local port
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to reserve webdriver port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func (s *webDriverSession) alive(ctx context.Context) error {
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

func (s *webDriverSession) Navigate(ctx context.Context, url string) error {
	if err := s.alive(ctx); err != nil {
		return err
	}
	return classify(s.wd.Get(url))
}

func (s *webDriverSession) CurrentURL(ctx context.Context) (string, error) {
	if err := s.alive(ctx); err != nil {
		return "", err
	}
	url, err := s.wd.CurrentURL()
	return url, classify(err)
}

func (s *webDriverSession) Query(ctx context.Context, selector entities.Selector) ([]interfaces.Element, error) {
	if err := s.alive(ctx); err != nil {
		return nil, err
	}
	found, err := s.wd.FindElements(selenium.ByCSSSelector, selector.Value)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "no such element") {
			return []interfaces.Element{}, nil
		}
		return nil, classify(err)
	}

	elements := make([]interfaces.Element, 0, len(found))
	for _, elem := range found {
		elements = append(elements, &webDriverElement{session: s, elem: elem})
	}
	return elements, nil
}

func (s *webDriverSession) Click(ctx context.Context, el interfaces.Element) error {
	elem, err := s.element(ctx, el)
	if err != nil {
		return err
	}
	return classify(elem.Click())
}

func (s *webDriverSession) ClearAndType(ctx context.Context, el interfaces.Element, text string) error {
	elem, err := s.element(ctx, el)
	if err != nil {
		return err
	}
	if err := elem.Clear(); err != nil {
		return classify(err)
	}
	return classify(elem.SendKeys(text))
}

func (s *webDriverSession) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	if err := s.alive(ctx); err != nil {
		return nil, err
	}
	data, err := s.wd.Screenshot()
	return data, classify(err)
}

// Close - quits the browser and stops the local driver service
func (s *webDriverSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errs.ErrSessionClosed
	}
	s.closed = true
	s.mu.Unlock()

	var closeErr error
	if err := ignoreClosed(s.wd.Quit()); err != nil {
		closeErr = multierr.Append(closeErr, fmt.Errorf("failed to quit webdriver: %w", err))
	}
	if s.service != nil {
		if err := s.service.Stop(); err != nil {
			closeErr = multierr.Append(closeErr, fmt.Errorf("failed to stop webdriver service: %w", err))
		}
	}

	s.log.Info("WebDriver browser closed")
	return closeErr
}

func (s *webDriverSession) element(ctx context.Context, el interfaces.Element) (selenium.WebElement, error) {
	if err := s.alive(ctx); err != nil {
		return nil, err
	}
	we, ok := el.(*webDriverElement)
	if !ok || we.session != s {
		return nil, fmt.Errorf("element %T does not belong to this session", el)
	}
	return we.elem, nil
}

func (e *webDriverElement) State(ctx context.Context) (entities.ElementState, error) {
	if err := e.session.alive(ctx); err != nil {
		return entities.ElementState{}, err
	}
	raw, err := e.session.wd.ExecuteScript("return ("+stateFunction+")(arguments[0]);", []interface{}{e.elem})
	if err != nil {
		return entities.ElementState{}, classify(err)
	}
	return parseState(raw)
}

func (e *webDriverElement) Text(ctx context.Context) (string, error) {
	if err := e.session.alive(ctx); err != nil {
		return "", err
	}
	text, err := e.elem.Text()
	return text, classify(err)
}
