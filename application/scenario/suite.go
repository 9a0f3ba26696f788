package scenario

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"authflow_automation/domain/entities"
	"authflow_automation/infrastructure/config"
)

// Suites maps suite names to their scenario builders
var Suites = map[string]func(cfg config.Config) []Scenario{
	"smoke": SmokeSuite,
	"login": LoginSuite,
}

// SuiteNames returns the known suite names, sorted
func SuiteNames() []string {
	names := make([]string, 0, len(Suites))
	for name := range Suites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suite returns the scenarios of the named suite
func Suite(name string, cfg config.Config) ([]Scenario, error) {
	build, ok := Suites[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown suite %q (available: %s)", name, strings.Join(SuiteNames(), ", "))
	}
	return build(cfg), nil
}

// SmokeSuite covers a valid login and a logout
func SmokeSuite(cfg config.Config) []Scenario {
	return []Scenario{
		ValidLogin(cfg.Credentials.Valid),
		Logout(cfg.Credentials.Valid),
	}
}

// LoginSuite covers the positive and negative login flows
func LoginSuite(cfg config.Config) []Scenario {
	return []Scenario{
		ValidLogin(cfg.Credentials.Valid),
		InvalidLogin(cfg.Credentials.Invalid),
		EmptyCredentials(),
		Logout(cfg.Credentials.Valid),
	}
}

// ValidLogin logs in and expects the dashboard
func ValidLogin(account config.Account) Scenario {
	return Scenario{
		Name: "valid_login",
		Run: func(ctx context.Context, env *Env) error {
			if err := env.Step("Navigate to login page", env.Login.Navigate(ctx)); err != nil {
				return err
			}
			env.Attach(ctx, "login_page")

			if err := env.Step("Enter valid credentials", env.Login.Login(ctx, account.Username, account.Password)); err != nil {
				return err
			}
			env.Attach(ctx, "credentials_entered")

			if err := env.Check("Verify successful login", env.Login.IsLoginSuccessful(ctx)); err != nil {
				return err
			}
			env.Attach(ctx, "login_successful")
			return env.Check("Verify user menu is shown", env.Dashboard.IsUserLoggedIn(ctx))
		},
	}
}

// InvalidLogin expects the login to be refused with an error message
func InvalidLogin(account config.Account) Scenario {
	return Scenario{
		Name: "invalid_login",
		Run: func(ctx context.Context, env *Env) error {
			if err := env.Step("Navigate to login page", env.Login.Navigate(ctx)); err != nil {
				return err
			}
			if err := env.Step("Enter invalid credentials", env.Login.Login(ctx, account.Username, account.Password)); err != nil {
				return err
			}
			if err := env.Check("Verify login is refused", !env.Login.IsLoginSuccessful(ctx)); err != nil {
				return err
			}
			msg := env.Login.GetErrorMessage(ctx)
			env.Attach(ctx, "login_refused")
			return env.Check(fmt.Sprintf("Verify error message is shown (got %q)", msg), msg != "")
		},
	}
}

// EmptyCredentials submits the empty form and expects the required-field hint
func EmptyCredentials() Scenario {
	return Scenario{
		Name: "empty_credentials",
		Run: func(ctx context.Context, env *Env) error {
			if err := env.Step("Navigate to login page", env.Login.Navigate(ctx)); err != nil {
				return err
			}
			if err := env.Step("Submit empty form", env.Login.ClickLoginButton(ctx)); err != nil {
				return err
			}
			msg := env.Login.GetErrorMessage(ctx)
			return env.Check(fmt.Sprintf("Verify required message is shown (got %q)", msg), msg != "")
		},
	}
}

// Logout logs in, logs out and expects the dashboard to be gone
func Logout(account config.Account) Scenario {
	return Scenario{
		Name: "logout",
		Run: func(ctx context.Context, env *Env) error {
			if err := env.Step("Navigate to login page", env.Login.Navigate(ctx)); err != nil {
				return err
			}
			if err := env.Step("Login with valid credentials", env.Login.Login(ctx, account.Username, account.Password)); err != nil {
				return err
			}
			if err := env.Check("Verify successful login", env.Login.IsLoginSuccessful(ctx)); err != nil {
				return err
			}
			if err := env.Step("Perform logout", env.Login.Logout(ctx)); err != nil {
				return err
			}
			env.Attach(ctx, "logout_clicked")
			return env.Check("Verify successful logout", !env.Login.IsLoginSuccessful(ctx))
		},
	}
}

// scriptFile is the YAML layout of scripted scenarios
type scriptFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadScripts reads scripted scenarios from a YAML file
func LoadScripts(fs afero.Fs, path string) ([]Scenario, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios: %w", err)
	}

	var file scriptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios %s: %w", path, err)
	}

	known := map[entities.ActionType]bool{
		entities.ActionNavigate:    true,
		entities.ActionClick:       true,
		entities.ActionTypeText:    true,
		entities.ActionWaitVisible: true,
		entities.ActionAssertURL:   true,
		entities.ActionAssertText:  true,
		entities.ActionScreenshot:  true,
	}
	for i, sc := range file.Scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("scenario %d has no name", i+1)
		}
		if len(sc.Steps) == 0 {
			return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
		}
		for j, step := range sc.Steps {
			if !known[step.Type] {
				return nil, fmt.Errorf("scenario %q step %d: unknown action %q", sc.Name, j+1, step.Type)
			}
		}
	}
	return file.Scenarios, nil
}
