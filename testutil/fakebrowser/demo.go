package fakebrowser

import (
	"strings"
	"time"

	"authflow_automation/infrastructure/config"
)

const (
	LoginPath     = "/web/index.php/auth/login"
	DashboardPath = "/web/index.php/dashboard/index"
)

// MenuItems are the entries of the fake dashboard side menu
var MenuItems = []string{"Admin", "PIM", "Leave", "Time", "Recruitment", "My Info", "Dashboard"}

// DemoApp simulates the authentication flow of the OrangeHRM demo on top of
// a fake Session. Elements rendered in response to a form submit appear
// after ResponseDelay.
type DemoApp struct {
	*Session

	BaseURL       string
	Selectors     config.Selectors
	Account       config.Account
	DisplayName   string
	ResponseDelay time.Duration

	loggedIn bool
	username *Element
	password *Element
}

// NewDemoApp returns a logged out demo application served at baseURL
func NewDemoApp(baseURL string) *DemoApp {
	app := &DemoApp{
		Session:     New(),
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Selectors:   config.DefaultSelectors(),
		Account:     config.DefaultCredentials().Valid,
		DisplayName: "Paul Collings",
	}
	app.OnNavigate = app.navigate
	return app
}

// LoggedIn reports whether the fake server holds an authenticated session
func (a *DemoApp) LoggedIn() bool {
	return a.loggedIn
}

func (a *DemoApp) navigate(url string) {
	if !strings.HasPrefix(url, a.BaseURL) {
		a.Reset()
		a.SetURL(url)
		return
	}
	if a.loggedIn {
		a.showDashboard(0)
		return
	}
	a.showLogin()
}

func (a *DemoApp) showLogin() {
	a.Reset()
	a.SetURL(a.BaseURL + LoginPath)

	sel := a.Selectors.Login
	a.username = a.Add(NewInput("username"), primary(sel.Username))
	a.password = a.Add(NewInput("password"), primary(sel.Password))
	a.Add(NewElement("login", "Login"), primary(sel.LoginButton)).OnClick = a.submit
}

func (a *DemoApp) submit() {
	sel := a.Selectors.Login
	user, pass := a.username.Value, a.password.Value

	switch {
	case user == "" || pass == "":
		for _, in := range []*Element{a.username, a.password} {
			if in.Value == "" {
				a.Add(NewElement(in.Name+"-required", "Required").After(a.ResponseDelay), primary(sel.RequiredError))
			}
		}
	case user == a.Account.Username && pass == a.Account.Password:
		a.loggedIn = true
		a.showDashboard(a.ResponseDelay)
	default:
		a.Add(NewElement("alert", "Invalid credentials").After(a.ResponseDelay), primary(sel.ErrorMessage))
	}
}

func (a *DemoApp) showDashboard(delay time.Duration) {
	a.Reset()
	a.SetURL(a.BaseURL + DashboardPath)

	a.Add(NewElement("breadcrumb", "Dashboard").After(delay), primary(a.Selectors.Login.Dashboard))
	a.Add(NewElement("welcome", a.DisplayName).After(delay), primary(a.Selectors.Dashboard.WelcomeMessage))

	dropdown := a.Add(NewElement("user-dropdown", a.DisplayName).After(delay),
		dedupe(a.Selectors.Login.UserDropdown, a.Selectors.Dashboard.UserDropdown)...)
	dropdown.OnClick = a.openDropdown

	for _, item := range MenuItems {
		a.Add(NewElement("menu-"+strings.ToLower(item), item).After(delay), primary(a.Selectors.Dashboard.MenuItems))
	}
}

func (a *DemoApp) openDropdown() {
	logout := NewElement("logout", "Logout")
	logout.OnClick = a.logout
	a.Add(logout, dedupe(a.Selectors.Login.LogoutLink, a.Selectors.Dashboard.LogoutLink)...)
}

func (a *DemoApp) logout() {
	a.loggedIn = false
	a.showLogin()
}

// primary returns the first alternative of a selector group
func primary(selector string) string {
	first, _, _ := strings.Cut(selector, ",")
	return strings.TrimSpace(first)
}

func dedupe(selectors ...string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range selectors {
		p := primary(s)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
