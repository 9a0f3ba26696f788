// Package config builds the run configuration once at process start.
//
// Values are resolved in this order, later sources winning: the built-in
// environment profiles (dev, qa, prod), an optional TOML profile file, then
// E2E_* environment variables. Selector and credential tables come from the
// compiled-in defaults, optionally overlaid with a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"authflow_automation/domain/entities"
)

// DefaultEnvironment is used when no environment is selected
const DefaultEnvironment = "dev"

// Config is the resolved configuration of a run. It is built once and
// passed explicitly to every component that needs it.
type Config struct {
	Environment string
	BaseURL     string
	Browser     entities.BrowserKind
	Driver      entities.DriverKind
	Headless    bool
	CIMode      bool

	ImplicitWait    time.Duration
	ExplicitWait    time.Duration
	PageLoadTimeout time.Duration
	PollInterval    time.Duration

	WindowWidth  int
	WindowHeight int

	// WorkerID distinguishes parallel workers in profile directory names
	WorkerID string

	ScreenshotDir    string
	ReportDir        string
	AllureResultsDir string
	LogDir           string
	LogLevel         string

	// WebDriverURL points at a running WebDriver server; empty starts a local driver
	WebDriverURL string
	DriverPath   string
	BrowserPath  string

	Selectors   Selectors
	Credentials Credentials
}

// Profile is one environment section of the TOML profile file.
// Waits are whole seconds.
type Profile struct {
	BaseURL         *string `toml:"base_url"`
	Browser         *string `toml:"browser"`
	Driver          *string `toml:"driver"`
	Headless        *bool   `toml:"headless"`
	CIMode          *bool   `toml:"ci_mode"`
	ImplicitWait    *int    `toml:"implicit_wait"`
	ExplicitWait    *int    `toml:"explicit_wait"`
	PageLoadTimeout *int    `toml:"page_load_timeout"`
	ScreenshotDir   *string `toml:"screenshot_dir"`
	ReportDir       *string `toml:"report_dir"`
}

// ProfileFile is the layout of the TOML profile file
type ProfileFile struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// envOverrides is decoded from the environment; nil fields were not set
type envOverrides struct {
	Environment     *string        `envconfig:"E2E_ENV"`
	BaseURL         *string        `envconfig:"E2E_BASE_URL"`
	Browser         *string        `envconfig:"E2E_BROWSER"`
	Driver          *string        `envconfig:"E2E_DRIVER"`
	Headless        *bool          `envconfig:"E2E_HEADLESS"`
	CIMode          *bool          `envconfig:"E2E_CI_MODE"`
	ImplicitWait    *time.Duration `envconfig:"E2E_IMPLICIT_WAIT"`
	ExplicitWait    *time.Duration `envconfig:"E2E_EXPLICIT_WAIT"`
	PageLoadTimeout *time.Duration `envconfig:"E2E_PAGE_LOAD_TIMEOUT"`
	PollInterval    *time.Duration `envconfig:"E2E_POLL_INTERVAL"`
	WorkerID        *string        `envconfig:"E2E_WORKER_ID"`
	ScreenshotDir   *string        `envconfig:"E2E_SCREENSHOT_DIR"`
	LogDir          *string        `envconfig:"E2E_LOG_DIR"`
	LogLevel        *string        `envconfig:"E2E_LOG_LEVEL"`
	WebDriverURL    *string        `envconfig:"E2E_WEBDRIVER_URL"`
	DriverPath      *string        `envconfig:"BROWSER_DRIVER_PATH"`
	BrowserPath     *string        `envconfig:"E2E_BROWSER_PATH"`
	ProfileFile     *string        `envconfig:"E2E_PROFILE_FILE"`
	TablesFile      *string        `envconfig:"E2E_TABLES_FILE"`
}

// Overrides are explicit settings, typically from command line flags,
// applied after every other source.
type Overrides struct {
	Environment string
	Browser     string
	Driver      string
	Headless    *bool
	ProfileFile string
	TablesFile  string
}

// Builtin returns the built-in profile of an environment
func Builtin(environment string) (Config, bool) {
	baseURLs := map[string]string{
		"dev":  "https://opensource-demo.orangehrmlive.com",
		"qa":   "https://qa.orangehrmlive.com",
		"prod": "https://orangehrmlive.com",
	}
	baseURL, ok := baseURLs[environment]
	if !ok {
		return Config{}, false
	}

	return Config{
		Environment:      environment,
		BaseURL:          baseURL,
		Browser:          entities.BrowserChrome,
		Driver:           entities.DriverPlaywright,
		Headless:         true,
		ImplicitWait:     5 * time.Second,
		ExplicitWait:     10 * time.Second,
		PageLoadTimeout:  20 * time.Second,
		PollInterval:     200 * time.Millisecond,
		WindowWidth:      1920,
		WindowHeight:     1080,
		WorkerID:         "gw0",
		ScreenshotDir:    "screenshots",
		ReportDir:        "reports",
		AllureResultsDir: "allure-results",
		LogDir:           "logs",
		LogLevel:         "info",
		Selectors:        DefaultSelectors(),
		Credentials:      DefaultCredentials(),
	}, true
}

// FromEnvironment loads .env when present and resolves the configuration
// from the process environment.
func FromEnvironment(overrides Overrides) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}
	return Load(afero.NewOsFs(), os.LookupEnv, overrides)
}

// Load resolves the configuration. lookup reads environment variables.
func Load(fs afero.Fs, lookup func(string) (string, bool), overrides Overrides) (Config, error) {
	var env envOverrides
	if err := envconfig.Process("", &env, lookup); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	environment := firstNonEmpty(overrides.Environment, deref(env.Environment), lookupValue(lookup, "TEST_ENV"), DefaultEnvironment)
	cfg, ok := Builtin(environment)
	if !ok {
		cfg, _ = Builtin(DefaultEnvironment)
		cfg.Environment = environment
	}

	if path := firstNonEmpty(overrides.ProfileFile, deref(env.ProfileFile)); path != "" {
		profile, found, err := readProfile(fs, path, environment)
		if err != nil {
			return Config{}, err
		}
		if !found && !ok {
			return Config{}, fmt.Errorf("unknown environment %q", environment)
		}
		if err := cfg.applyProfile(profile); err != nil {
			return Config{}, err
		}
	} else if !ok {
		return Config{}, fmt.Errorf("unknown environment %q", environment)
	}

	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}
	if worker, ok := lookup("PYTEST_XDIST_WORKER"); ok && env.WorkerID == nil && worker != "" {
		cfg.WorkerID = worker
	}
	if v, ok := lookup("CI"); ok && env.CIMode == nil {
		cfg.CIMode, _ = strconv.ParseBool(v)
	}
	if v, _ := lookup("GITHUB_ACTIONS"); v == "true" && env.CIMode == nil {
		cfg.CIMode = true
	}

	if err := cfg.applyOverrides(overrides); err != nil {
		return Config{}, err
	}

	tables, err := LoadTables(fs, firstNonEmpty(overrides.TablesFile, deref(env.TablesFile)))
	if err != nil {
		return Config{}, err
	}
	cfg.Selectors = tables.Selectors
	cfg.Credentials = tables.Credentials

	return cfg, cfg.Validate()
}

func readProfile(fs afero.Fs, path, environment string) (Profile, bool, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Profile{}, false, fmt.Errorf("failed to read profile file: %w", err)
	}

	var file ProfileFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return Profile{}, false, fmt.Errorf("failed to parse profile file %s: %w", path, err)
	}
	profile, found := file.Profiles[environment]
	return profile, found, nil
}

func (c *Config) applyProfile(p Profile) error {
	if p.BaseURL != nil {
		c.BaseURL = *p.BaseURL
	}
	if p.Browser != nil {
		if err := c.setBrowser(*p.Browser); err != nil {
			return err
		}
	}
	if p.Driver != nil {
		if err := c.setDriver(*p.Driver); err != nil {
			return err
		}
	}
	if p.Headless != nil {
		c.Headless = *p.Headless
	}
	if p.CIMode != nil {
		c.CIMode = *p.CIMode
	}
	if p.ImplicitWait != nil {
		c.ImplicitWait = time.Duration(*p.ImplicitWait) * time.Second
	}
	if p.ExplicitWait != nil {
		c.ExplicitWait = time.Duration(*p.ExplicitWait) * time.Second
	}
	if p.PageLoadTimeout != nil {
		c.PageLoadTimeout = time.Duration(*p.PageLoadTimeout) * time.Second
	}
	if p.ScreenshotDir != nil {
		c.ScreenshotDir = *p.ScreenshotDir
	}
	if p.ReportDir != nil {
		c.ReportDir = *p.ReportDir
	}
	return nil
}

func (c *Config) applyEnv(env envOverrides) error {
	if env.Browser != nil {
		if err := c.setBrowser(*env.Browser); err != nil {
			return err
		}
	}
	if env.Driver != nil {
		if err := c.setDriver(*env.Driver); err != nil {
			return err
		}
	}

	setString(&c.BaseURL, env.BaseURL)
	setString(&c.WorkerID, env.WorkerID)
	setString(&c.ScreenshotDir, env.ScreenshotDir)
	setString(&c.LogDir, env.LogDir)
	setString(&c.LogLevel, env.LogLevel)
	setString(&c.WebDriverURL, env.WebDriverURL)
	setString(&c.DriverPath, env.DriverPath)
	setString(&c.BrowserPath, env.BrowserPath)

	if env.Headless != nil {
		c.Headless = *env.Headless
	}
	if env.CIMode != nil {
		c.CIMode = *env.CIMode
	}
	if env.ImplicitWait != nil {
		c.ImplicitWait = *env.ImplicitWait
	}
	if env.ExplicitWait != nil {
		c.ExplicitWait = *env.ExplicitWait
	}
	if env.PageLoadTimeout != nil {
		c.PageLoadTimeout = *env.PageLoadTimeout
	}
	if env.PollInterval != nil {
		c.PollInterval = *env.PollInterval
	}
	return nil
}

func (c *Config) applyOverrides(o Overrides) error {
	if o.Browser != "" {
		if err := c.setBrowser(o.Browser); err != nil {
			return err
		}
	}
	if o.Driver != "" {
		if err := c.setDriver(o.Driver); err != nil {
			return err
		}
	}
	if o.Headless != nil {
		c.Headless = *o.Headless
	}
	return nil
}

func (c *Config) setBrowser(name string) error {
	kind, err := entities.ParseBrowserKind(name)
	if err != nil {
		return err
	}
	c.Browser = kind
	return nil
}

func (c *Config) setDriver(name string) error {
	kind, err := entities.ParseDriverKind(name)
	if err != nil {
		return err
	}
	c.Driver = kind
	return nil
}

// Validate rejects configurations no session could run with
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url must not be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base url %q must be http or https", c.BaseURL)
	}
	if !c.Driver.Supports(c.Browser) {
		return fmt.Errorf("driver %s cannot run %s", c.Driver, c.Browser)
	}

	waits := []struct {
		name  string
		value time.Duration
	}{
		{"implicit wait", c.ImplicitWait},
		{"explicit wait", c.ExplicitWait},
		{"page load timeout", c.PageLoadTimeout},
		{"poll interval", c.PollInterval},
	}
	for _, w := range waits {
		if w.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", w.name, w.value)
		}
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Property is one key/value line of the environment report
type Property struct {
	Key   string
	Value string
}

// EnvironmentProperties describes the run for report viewers
func (c Config) EnvironmentProperties() []Property {
	return []Property{
		{"Browser", string(c.Browser)},
		{"Environment", c.Environment},
		{"Base URL", c.BaseURL},
		{"Headless", strconv.FormatBool(c.Headless)},
		{"CI Mode", strconv.FormatBool(c.CIMode)},
	}
}

// Summary lists the resolved settings with secrets masked
func (c Config) Summary() []Property {
	props := append(c.EnvironmentProperties(),
		Property{"Driver", string(c.Driver)},
		Property{"Implicit Wait", c.ImplicitWait.String()},
		Property{"Explicit Wait", c.ExplicitWait.String()},
		Property{"Page Load Timeout", c.PageLoadTimeout.String()},
		Property{"Poll Interval", c.PollInterval.String()},
		Property{"Worker", c.WorkerID},
		Property{"Screenshot Dir", c.ScreenshotDir},
		Property{"Log Dir", c.LogDir},
		Property{"Username", c.Credentials.Valid.Username},
		Property{"Password", mask(c.Credentials.Valid.Password)},
	)
	if c.WebDriverURL != "" {
		props = append(props, Property{"WebDriver URL", c.WebDriverURL})
	}
	return props
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return strings.Repeat("*", 8)
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func lookupValue(lookup func(string) (string, bool), key string) string {
	v, _ := lookup(key)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
