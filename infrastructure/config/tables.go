package config

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// LoginSelectors are the css selectors of the login page
type LoginSelectors struct {
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	LoginButton   string `yaml:"login_button"`
	ErrorMessage  string `yaml:"error_message"`
	RequiredError string `yaml:"required_error"`
	Dashboard     string `yaml:"dashboard"`
	UserDropdown  string `yaml:"user_dropdown"`
	LogoutLink    string `yaml:"logout_link"`
}

// DashboardSelectors are the css selectors of the dashboard page
type DashboardSelectors struct {
	WelcomeMessage string `yaml:"welcome_message"`
	UserDropdown   string `yaml:"user_dropdown"`
	LogoutLink     string `yaml:"logout_link"`
	MenuItems      string `yaml:"menu_items"`
}

// Selectors is the read-only selector table consumed by page objects
type Selectors struct {
	// DashboardMarker is the URL fragment present only after a successful login
	DashboardMarker string             `yaml:"dashboard_marker"`
	Login           LoginSelectors     `yaml:"login"`
	Dashboard       DashboardSelectors `yaml:"dashboard"`
}

// Account is a username/password pair
type Account struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Credentials holds the accounts used by the smoke suite
type Credentials struct {
	Valid   Account `yaml:"valid"`
	Invalid Account `yaml:"invalid"`
}

// Tables groups the declarative data that may be overridden from YAML
type Tables struct {
	Selectors   Selectors   `yaml:"selectors"`
	Credentials Credentials `yaml:"credentials"`
}

// DefaultSelectors returns the selectors of the OrangeHRM demo application
func DefaultSelectors() Selectors {
	return Selectors{
		DashboardMarker: "/dashboard/index",
		Login: LoginSelectors{
			Username:      "input[name='username']",
			Password:      "input[name='password']",
			LoginButton:   "button[type='submit']",
			ErrorMessage:  ".oxd-alert-content-text, .oxd-text--p",
			RequiredError: ".oxd-input-field-error-message, .oxd-text--p",
			Dashboard:     ".oxd-topbar-header-breadcrumb",
			UserDropdown:  ".oxd-userdropdown-tab",
			LogoutLink:    "a[href*='logout']",
		},
		Dashboard: DashboardSelectors{
			WelcomeMessage: ".oxd-userdropdown-name, .oxd-userdropdown-tab",
			UserDropdown:   ".oxd-userdropdown-tab",
			LogoutLink:     `a[href="/web/index.php/auth/logout"]`,
			MenuItems:      ".oxd-main-menu-item",
		},
	}
}

// DefaultCredentials returns the public demo accounts
func DefaultCredentials() Credentials {
	return Credentials{
		Valid:   Account{Username: "Admin", Password: "admin123"},
		Invalid: Account{Username: "invalid", Password: "invalid"},
	}
}

// DefaultTables returns the compiled-in tables
func DefaultTables() Tables {
	return Tables{Selectors: DefaultSelectors(), Credentials: DefaultCredentials()}
}

// LoadTables overlays the YAML file at path onto the compiled-in tables.
// Keys missing from the file keep their default value.
func LoadTables(fs afero.Fs, path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return tables, fmt.Errorf("failed to read tables file: %w", err)
	}
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return tables, fmt.Errorf("failed to parse tables file %s: %w", path, err)
	}
	return tables, tables.Selectors.validate()
}

func (s Selectors) validate() error {
	required := map[string]string{
		"dashboard_marker":      s.DashboardMarker,
		"login.username":        s.Login.Username,
		"login.password":        s.Login.Password,
		"login.login_button":    s.Login.LoginButton,
		"login.error_message":   s.Login.ErrorMessage,
		"login.dashboard":       s.Login.Dashboard,
		"login.user_dropdown":   s.Login.UserDropdown,
		"login.logout_link":     s.Login.LogoutLink,
		"dashboard.menu_items":  s.Dashboard.MenuItems,
		"dashboard.logout_link": s.Dashboard.LogoutLink,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("selector %s must not be empty", key)
		}
	}
	return nil
}
