// Package pages holds the page objects of the application under test. They
// translate user intents into facade actions using the selector table.
package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"authflow_automation/application/facade"
	"authflow_automation/application/wait"
	"authflow_automation/domain/entities"
	"authflow_automation/domain/errs"
	"authflow_automation/infrastructure/config"
)

// Login is the login page
type Login struct {
	page *facade.Page
	cfg  config.Config
	sel  config.LoginSelectors
	log  logrus.FieldLogger
}

// NewLogin creates the login page object
func NewLogin(page *facade.Page, cfg config.Config, log logrus.FieldLogger) *Login {
	return &Login{
		page: page,
		cfg:  cfg,
		sel:  cfg.Selectors.Login,
		log:  log.WithField("page", "login"),
	}
}

// Navigate opens the login page. When the application redirects an existing
// session to the dashboard, the user is logged out first.
func (l *Login) Navigate(ctx context.Context) error {
	l.log.Infof("Navigating to %s", l.cfg.BaseURL)
	if err := l.page.Navigate(ctx, l.cfg.BaseURL); err != nil {
		return err
	}

	landing, err := l.waitForLanding(ctx)
	if err != nil {
		l.log.WithError(err).Error("Timeout waiting for login page to load")
		return fmt.Errorf("login page did not load: %w", err)
	}

	if landing == landingDashboard {
		l.log.Info("User already logged in, attempting to logout")
		if err := l.Logout(ctx); err != nil {
			return err
		}
		if _, err := l.page.Locator().FindOne(ctx, entities.CSS(l.sel.Username), l.cfg.PageLoadTimeout); err != nil {
			return fmt.Errorf("login page did not load after logout: %w", err)
		}
	}

	l.log.Info("Login page loaded successfully")
	return nil
}

// Login enters the credentials and submits the form. It does not check
// whether the login succeeded.
func (l *Login) Login(ctx context.Context, username, password string) error {
	if err := l.page.InputText(ctx, entities.CSS(l.sel.Username), username); err != nil {
		l.log.WithError(err).Error("Login failed")
		return err
	}
	l.log.Infof("Entered username: %s", username)

	if err := l.page.InputText(ctx, entities.CSS(l.sel.Password), password); err != nil {
		l.log.WithError(err).Error("Login failed")
		return err
	}
	l.log.Info("Entered password")

	return l.ClickLoginButton(ctx)
}

// ClickLoginButton submits the login form
func (l *Login) ClickLoginButton(ctx context.Context) error {
	if err := l.page.Click(ctx, entities.CSS(l.sel.LoginButton)); err != nil {
		l.log.WithError(err).Error("Failed to click login button")
		return err
	}
	l.log.Info("Clicked login button")
	return nil
}

// IsLoginSuccessful waits for the dashboard URL and then for the
// dashboard-only element. It never fails; a timeout yields false.
func (l *Login) IsLoginSuccessful(ctx context.Context) bool {
	_, err := l.page.Locator().WaitURL(ctx, func(url string) bool {
		return strings.Contains(url, l.cfg.Selectors.DashboardMarker)
	}, l.cfg.ImplicitWait)
	if err != nil {
		l.log.WithError(err).Debug("Dashboard URL not reached")
		return false
	}

	return l.page.IsElementPresent(ctx, entities.CSS(l.sel.Dashboard), l.cfg.ExplicitWait)
}

// GetErrorMessage returns the login alert, or the required-field message
// when there is no alert. Both are raced against one implicit-wait budget.
// It returns "" when neither appears.
func (l *Login) GetErrorMessage(ctx context.Context) string {
	groups := []entities.Selector{
		entities.CSS(l.sel.ErrorMessage),
		entities.CSS(l.sel.RequiredError),
	}

	_, err := wait.Await(ctx, wait.Spec{
		Selector:     l.sel.ErrorMessage + " | " + l.sel.RequiredError,
		Timeout:      l.cfg.ImplicitWait,
		PollInterval: l.page.Timeouts().Poll,
	}, func(ctx context.Context) (bool, error) {
		for _, sel := range groups {
			if ok, err := l.present(ctx, sel); ok || err != nil {
				return ok, err
			}
		}
		return false, nil
	})
	if err != nil {
		if errors.Is(err, errs.ErrWaitTimeout) {
			l.log.Debug("No error message found within timeout period")
		} else {
			l.log.WithError(err).Error("Failed to read error message")
		}
		return ""
	}

	for _, sel := range groups {
		for _, el := range l.page.Locator().FindMany(ctx, sel, 0) {
			text, err := el.Text(ctx)
			if err != nil {
				continue
			}
			if text = strings.TrimSpace(text); text != "" {
				return text
			}
		}
	}
	return ""
}

// Logout opens the user menu and follows the logout link
func (l *Login) Logout(ctx context.Context) error {
	if err := l.page.Click(ctx, entities.CSS(l.sel.UserDropdown)); err != nil {
		l.log.WithError(err).Error("Logout failed")
		return err
	}
	l.log.Info("Clicked user dropdown")

	if err := l.page.Click(ctx, entities.CSS(l.sel.LogoutLink)); err != nil {
		l.log.WithError(err).Error("Logout failed")
		return err
	}
	l.log.Info("Clicked logout link")
	return nil
}

type landing int

const (
	landingLogin landing = iota
	landingDashboard
)

// waitForLanding waits until either the login form or the dashboard shows up
func (l *Login) waitForLanding(ctx context.Context) (landing, error) {
	username := entities.CSS(l.sel.Username)

	where, _, err := wait.Until(ctx, wait.Spec{
		Selector:     l.sel.Username,
		Timeout:      l.cfg.PageLoadTimeout,
		PollInterval: l.page.Timeouts().Poll,
	}, func(ctx context.Context) (landing, bool, error) {
		url, err := l.page.CurrentURL(ctx)
		if err != nil {
			return landingLogin, false, err
		}
		if strings.Contains(url, l.cfg.Selectors.DashboardMarker) {
			return landingDashboard, true, nil
		}
		ok, err := l.present(ctx, username)
		return landingLogin, ok, err
	})
	return where, err
}

// present checks sel once. A miss is (false, nil); a session failure is
// returned to end the enclosing wait.
func (l *Login) present(ctx context.Context, sel entities.Selector) (bool, error) {
	out := l.page.Locator().Probe(ctx, entities.WaitSpec{
		Selector:  sel,
		Predicate: entities.PredicatePresence,
	})
	if out.Found() {
		return true, nil
	}
	if out.LastErr != nil && !errors.Is(out.LastErr, errs.ErrWaitTimeout) && !errs.IsTransient(out.LastErr) {
		return false, out.LastErr
	}
	return false, nil
}
