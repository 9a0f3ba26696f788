package pages

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"authflow_automation/application/facade"
	"authflow_automation/domain/entities"
	"authflow_automation/infrastructure/config"
)

// Dashboard is the landing page after a successful login
type Dashboard struct {
	page *facade.Page
	cfg  config.Config
	sel  config.DashboardSelectors
	log  logrus.FieldLogger
}

// NewDashboard creates the dashboard page object
func NewDashboard(page *facade.Page, cfg config.Config, log logrus.FieldLogger) *Dashboard {
	return &Dashboard{
		page: page,
		cfg:  cfg,
		sel:  cfg.Selectors.Dashboard,
		log:  log.WithField("page", "dashboard"),
	}
}

// GetWelcomeMessage returns the name shown in the user menu, or ""
func (d *Dashboard) GetWelcomeMessage(ctx context.Context) string {
	return d.page.GetText(ctx, entities.CSS(d.sel.WelcomeMessage))
}

// GetMenuItems returns the texts of the side menu entries, or an empty slice
func (d *Dashboard) GetMenuItems(ctx context.Context) []string {
	elements := d.page.FindElements(ctx, entities.CSS(d.sel.MenuItems))

	items := make([]string, 0, len(elements))
	for _, el := range elements {
		text, err := el.Text(ctx)
		if err != nil {
			d.log.WithError(err).Debug("Skipping unreadable menu item")
			continue
		}
		items = append(items, strings.TrimSpace(text))
	}
	return items
}

// IsUserLoggedIn reports whether the user menu is shown
func (d *Dashboard) IsUserLoggedIn(ctx context.Context) bool {
	return d.page.IsElementPresent(ctx, entities.CSS(d.sel.WelcomeMessage), d.cfg.ExplicitWait)
}

// Logout opens the user menu and follows the logout link
func (d *Dashboard) Logout(ctx context.Context) error {
	if err := d.page.Click(ctx, entities.CSS(d.sel.UserDropdown)); err != nil {
		return err
	}
	if err := d.page.Click(ctx, entities.CSS(d.sel.LogoutLink)); err != nil {
		return err
	}
	d.log.Info("Logged out")
	return nil
}
