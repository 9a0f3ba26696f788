package scenario

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authflow_automation/domain/entities"
	"authflow_automation/domain/interfaces"
	"authflow_automation/infrastructure/config"
	"authflow_automation/infrastructure/storage"
	"authflow_automation/testutil/fakebrowser"
)

const baseURL = "https://opensource-demo.orangehrmlive.com"

type fixture struct {
	cfg   config.Config
	fs    afero.Fs
	store interfaces.ArtifactStore

	mu       sync.Mutex
	apps     []*fakebrowser.DemoApp
	workers  []string
	released int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, ok := config.Builtin("dev")
	require.True(t, ok)
	cfg.ImplicitWait = 300 * time.Millisecond
	cfg.ExplicitWait = 300 * time.Millisecond
	cfg.PageLoadTimeout = 500 * time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond

	fs := afero.NewMemMapFs()
	store := storage.NewArtifacts(fs, "screenshots")

	return &fixture{cfg: cfg, fs: fs, store: store}
}

func (f *fixture) acquire(ctx context.Context, worker string) (interfaces.Session, func(), error) {
	app := fakebrowser.NewDemoApp(baseURL)
	app.ResponseDelay = 20 * time.Millisecond

	f.mu.Lock()
	f.apps = append(f.apps, app)
	f.workers = append(f.workers, worker)
	f.mu.Unlock()

	release := func() {
		_ = app.Close()
		f.mu.Lock()
		f.released++
		f.mu.Unlock()
	}
	return app, release, nil
}

func (f *fixture) runner(workers int) *Runner {
	logger, _ := test.NewNullLogger()
	return NewRunner(f.cfg, f.acquire, f.store, logger, workers)
}

func TestRunLoginSuite(t *testing.T) {
	f := newFixture(t)

	scenarios, err := Suite("login", f.cfg)
	require.NoError(t, err)

	results := f.runner(1).Run(context.Background(), scenarios...)
	require.Len(t, results, 4)
	for _, res := range results {
		assert.Equal(t, entities.ScenarioStatusPassed, res.Status, "%s: %s", res.Name, res.Error)
		assert.NotEmpty(t, res.Steps, res.Name)
		assert.Empty(t, res.Screenshot, res.Name)
		assert.Greater(t, res.Duration, time.Duration(0), res.Name)
	}
	assert.Equal(t, []string{"valid_login", "invalid_login", "empty_credentials", "logout"},
		[]string{results[0].Name, results[1].Name, results[2].Name, results[3].Name})

	passed, failed := Summary(results)
	assert.Equal(t, 4, passed)
	assert.Equal(t, 0, failed)

	assert.Len(t, f.apps, 4)
	assert.Equal(t, 4, f.released)
	for _, app := range f.apps {
		assert.True(t, app.Closed())
	}
}

func TestRunAttachesScreenshots(t *testing.T) {
	f := newFixture(t)

	results := f.runner(1).Run(context.Background(), ValidLogin(f.cfg.Credentials.Valid))
	require.Len(t, results, 1)

	var attached []string
	for _, step := range results[0].Steps {
		if step.Data != "" {
			attached = append(attached, step.Data)
		}
	}
	require.Len(t, attached, 3)
	for _, path := range attached {
		exists, err := afero.Exists(f.fs, path)
		require.NoError(t, err)
		assert.True(t, exists, path)
	}
}

func TestRunUnwritableScreenshotDirectory(t *testing.T) {
	f := newFixture(t)
	f.store = storage.NewArtifacts(afero.NewReadOnlyFs(afero.NewMemMapFs()), "screenshots")

	results := f.runner(1).Run(context.Background(),
		ValidLogin(f.cfg.Credentials.Valid),
		ValidLogin(config.Account{Username: "Admin", Password: "wrong"}),
	)
	require.Len(t, results, 2)

	assert.Equal(t, entities.ScenarioStatusPassed, results[0].Status, results[0].Error)
	for _, step := range results[0].Steps {
		assert.Empty(t, step.Data)
	}

	assert.Equal(t, entities.ScenarioStatusFailed, results[1].Status)
	assert.Contains(t, results[1].Error, "Verify successful login")
	assert.Empty(t, results[1].Screenshot)
}

func TestRunFailureCapturesScreenshot(t *testing.T) {
	f := newFixture(t)

	wrong := config.Account{Username: "Admin", Password: "wrong"}
	results := f.runner(1).Run(context.Background(), ValidLogin(wrong))
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, entities.ScenarioStatusFailed, res.Status)
	assert.Contains(t, res.Error, "Verify successful login")
	require.NotEmpty(t, res.Screenshot)
	assert.True(t, strings.Contains(res.Screenshot, "failure_valid_login_"), res.Screenshot)

	exists, err := afero.Exists(f.fs, res.Screenshot)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, f.released)
}

func TestRunAcquireFailure(t *testing.T) {
	f := newFixture(t)
	logger, _ := test.NewNullLogger()
	runner := NewRunner(f.cfg, func(ctx context.Context, worker string) (interfaces.Session, func(), error) {
		return nil, nil, errors.New("chromedriver not found")
	}, f.store, logger, 1)

	results := runner.Run(context.Background(), EmptyCredentials())
	require.Len(t, results, 1)
	assert.Equal(t, entities.ScenarioStatusFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "failed to acquire browser")
	assert.Contains(t, results[0].Error, "chromedriver not found")
}

func TestRunScriptedScenario(t *testing.T) {
	f := newFixture(t)
	sel := f.cfg.Selectors

	sc := Scenario{
		Name: "scripted login",
		Steps: []entities.Action{
			{Type: entities.ActionNavigate, URL: "/"},
			{Type: entities.ActionWaitVisible, Selector: sel.Login.Username},
			{Type: entities.ActionTypeText, Selector: sel.Login.Username, Text: "Admin"},
			{Type: entities.ActionTypeText, Selector: sel.Login.Password, Text: "admin123", Description: "enter password admin123"},
			{Type: entities.ActionClick, Selector: sel.Login.LoginButton},
			{Type: entities.ActionAssertURL, URL: "dashboard"},
			{Type: entities.ActionAssertText, Selector: sel.Dashboard.WelcomeMessage, Text: "Paul"},
			{Type: entities.ActionScreenshot, Text: "after login"},
		},
	}

	results := f.runner(1).Run(context.Background(), sc)
	require.Len(t, results, 1)
	res := results[0]
	require.Equal(t, entities.ScenarioStatusPassed, res.Status, res.Error)
	require.Len(t, res.Steps, len(sc.Steps))

	assert.Equal(t, baseURL+"/", res.Steps[0].Data)
	assert.Equal(t, "enter password ********", res.Steps[3].Message)
	assert.Equal(t, "Paul Collings", res.Steps[6].Data)
	assert.Contains(t, res.Steps[7].Data, "after_login_")
	for _, step := range res.Steps {
		assert.True(t, step.Success, step.Message)
		assert.NotContains(t, step.Message, "admin123")
	}

	assert.True(t, f.apps[0].LoggedIn())
	assert.Equal(t, "admin123", f.apps[0].Typed["password"])
}

func TestRunScriptedScenarioFailure(t *testing.T) {
	f := newFixture(t)

	sc := Scenario{
		Name: "wrong text",
		Steps: []entities.Action{
			{Type: entities.ActionNavigate, URL: baseURL},
			{Type: entities.ActionAssertText, Selector: f.cfg.Selectors.Login.LoginButton, Text: "Sign in"},
			{Type: entities.ActionClick, Selector: f.cfg.Selectors.Login.LoginButton},
		},
	}

	results := f.runner(1).Run(context.Background(), sc)
	res := results[0]
	assert.Equal(t, entities.ScenarioStatusFailed, res.Status)
	assert.Contains(t, res.Error, `"Sign in"`)
	require.Len(t, res.Steps, 2)
	assert.False(t, res.Steps[1].Success)
	assert.NotEmpty(t, res.Screenshot)
	assert.Empty(t, f.apps[0].Clicks)
}

func TestRunRejectsEmptyScenario(t *testing.T) {
	f := newFixture(t)

	results := f.runner(1).Run(context.Background(), Scenario{Name: "empty"})
	assert.Equal(t, entities.ScenarioStatusFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "no steps")
}

func TestRunRecoversPanics(t *testing.T) {
	f := newFixture(t)

	results := f.runner(1).Run(context.Background(), Scenario{
		Name: "panics",
		Run: func(ctx context.Context, env *Env) error {
			panic("boom")
		},
	})
	assert.Equal(t, entities.ScenarioStatusFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "boom")
	assert.Equal(t, 1, f.released)
}

func TestRunParallelWorkers(t *testing.T) {
	f := newFixture(t)

	scenarios := []Scenario{
		ValidLogin(f.cfg.Credentials.Valid),
		InvalidLogin(f.cfg.Credentials.Invalid),
		EmptyCredentials(),
		Logout(f.cfg.Credentials.Valid),
	}
	results := f.runner(2).Run(context.Background(), scenarios...)
	require.Len(t, results, len(scenarios))

	for i, res := range results {
		assert.Equal(t, scenarios[i].Name, res.Name)
		assert.Equal(t, entities.ScenarioStatusPassed, res.Status, "%s: %s", res.Name, res.Error)
	}
	for _, worker := range f.workers {
		assert.Contains(t, []string{"gw0", "gw1"}, worker)
	}
	assert.Equal(t, len(scenarios), f.released)
}

func TestRunCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := f.runner(1).Run(ctx, EmptyCredentials(), Logout(f.cfg.Credentials.Valid))
	for _, res := range results {
		assert.Equal(t, entities.ScenarioStatusFailed, res.Status)
		assert.Contains(t, res.Error, "scenario not started")
	}
	assert.Empty(t, f.apps)
}

func TestSuite(t *testing.T) {
	cfg, _ := config.Builtin("dev")

	smoke, err := Suite(" Smoke ", cfg)
	require.NoError(t, err)
	assert.Len(t, smoke, 2)

	_, err = Suite("regression", cfg)
	assert.ErrorContains(t, err, "login, smoke")
}

func TestLoadScripts(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "scenarios.yaml", []byte(`
scenarios:
  - name: open login
    steps:
      - type: navigate
        url: /
      - type: wait_visible
        selector: input[name='username']
        description: login form shown
`), 0o644))

	scenarios, err := LoadScripts(fs, "scenarios.yaml")
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "open login", scenarios[0].Name)
	assert.Equal(t, entities.Action{Type: entities.ActionWaitVisible, Selector: "input[name='username']", Description: "login form shown"}, scenarios[0].Steps[1])

	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte(`
scenarios:
  - name: bad
    steps:
      - type: hover
        selector: a
`), 0o644))
	_, err = LoadScripts(fs, "bad.yaml")
	assert.ErrorContains(t, err, `unknown action "hover"`)

	_, err = LoadScripts(fs, "missing.yaml")
	assert.Error(t, err)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "scripted_login", slug("Scripted Login"))
	assert.Equal(t, "a_b-c_1", slug(" a/b-c.1 "))
}
