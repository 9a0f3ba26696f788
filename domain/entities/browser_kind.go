package entities

import (
	"fmt"
	"strings"
)

// BrowserKind names the browser a session drives
type BrowserKind string

const (
	BrowserChrome  BrowserKind = "chrome"
	BrowserFirefox BrowserKind = "firefox"
	BrowserEdge    BrowserKind = "edge"
)

// ParseBrowserKind converts a configured browser name
func ParseBrowserKind(name string) (BrowserKind, error) {
	switch k := BrowserKind(strings.ToLower(strings.TrimSpace(name))); k {
	case BrowserChrome, BrowserFirefox, BrowserEdge:
		return k, nil
	case "chromium":
		return BrowserChrome, nil
	case "msedge":
		return BrowserEdge, nil
	default:
		return "", fmt.Errorf("unknown browser %q", name)
	}
}

// DriverKind names the remote-control protocol implementation
type DriverKind string

const (
	DriverPlaywright DriverKind = "playwright"
	DriverCDP        DriverKind = "cdp"
	DriverWebDriver  DriverKind = "webdriver"
)

// ParseDriverKind converts a configured driver name
func ParseDriverKind(name string) (DriverKind, error) {
	switch k := DriverKind(strings.ToLower(strings.TrimSpace(name))); k {
	case DriverPlaywright, DriverCDP, DriverWebDriver:
		return k, nil
	case "chromedp":
		return DriverCDP, nil
	case "selenium":
		return DriverWebDriver, nil
	default:
		return "", fmt.Errorf("unknown driver %q", name)
	}
}

// Supports reports whether the driver can run the given browser
func (d DriverKind) Supports(b BrowserKind) bool {
	switch d {
	case DriverPlaywright, DriverWebDriver:
		return b == BrowserChrome || b == BrowserFirefox || b == BrowserEdge
	case DriverCDP:
		return b == BrowserChrome || b == BrowserEdge
	default:
		return false
	}
}
