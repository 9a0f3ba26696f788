package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"authflow_automation/domain/entities"
	"authflow_automation/infrastructure/config"
)

// defaultActionTimeout bounds driver calls made without a context deadline
const defaultActionTimeout = 5 * time.Second

// chromiumArgs - returns the command line flags for chrome and edge
func chromiumArgs(cfg config.Config) []string {
	args := []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-gpu",
		"--disable-notifications",
		"--disable-blink-features=AutomationControlled",
		fmt.Sprintf("--window-size=%d,%d", cfg.WindowWidth, cfg.WindowHeight),
	}
	if cfg.Headless {
		args = append(args, "--headless=new")
	}
	return args
}

// firefoxArgs - returns the command line flags for firefox
func firefoxArgs(cfg config.Config) []string {
	args := []string{
		fmt.Sprintf("--width=%d", cfg.WindowWidth),
		fmt.Sprintf("--height=%d", cfg.WindowHeight),
	}
	if cfg.Headless {
		args = append(args, "--headless")
	}
	return args
}

// timeoutMillis - returns the time left on ctx in milliseconds, or fallback
func timeoutMillis(ctx context.Context, fallback time.Duration) float64 {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 {
			return float64(left.Milliseconds())
		}
		return 1
	}
	return float64(fallback.Milliseconds())
}

var driverBinaries = map[entities.BrowserKind]string{
	entities.BrowserChrome:  "chromedriver",
	entities.BrowserFirefox: "geckodriver",
	entities.BrowserEdge:    "msedgedriver",
}

// findDriver - finds the WebDriver executable for browser
func findDriver(browser entities.BrowserKind, configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
	}

	name, ok := driverBinaries[browser]
	if !ok {
		return "", fmt.Errorf("no webdriver known for %s", browser)
	}

	commonPaths := []string{
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/usr/bin", name),
		filepath.Join("/opt/homebrew/bin", name),
		filepath.Join(os.Getenv("HOME"), "bin", name),
		filepath.Join(".", name),
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%s not found. Please install it or set BROWSER_DRIVER_PATH environment variable", name)
}

var browserBinaries = map[entities.BrowserKind][]string{
	entities.BrowserChrome: {
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		"google-chrome",
		"chromium",
		"chromium-browser",
	},
	entities.BrowserEdge: {
		"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
		"/usr/bin/microsoft-edge",
		"/usr/bin/microsoft-edge-stable",
		`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
		"microsoft-edge",
		"msedge",
	},
}

// findBrowserBinary - finds the browser executable, or "" to let the driver decide
func findBrowserBinary(browser entities.BrowserKind, configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	for _, candidate := range browserBinaries[browser] {
		if filepath.IsAbs(candidate) {
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
			continue
		}
		if path, err := exec.LookPath(candidate); err == nil {
			return path
		}
	}
	return ""
}
