package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authflow_automation/domain/entities"
	"authflow_automation/domain/errs"
	"authflow_automation/domain/interfaces"
	"authflow_automation/infrastructure/config"
	"authflow_automation/testutil/fakebrowser"
)

func TestParseState(t *testing.T) {
	state, err := parseState(map[string]interface{}{
		"attached": true,
		"visible":  true,
		"enabled":  true,
		"editable": false,
		"obscured": true,
		"x":        float64(120.5),
		"y":        40,
		"width":    int64(80),
		"height":   float64(24),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.ElementState{
		Attached: true,
		Visible:  true,
		Enabled:  true,
		Obscured: true,
		Center:   entities.Position{X: 120.5, Y: 40},
		Width:    80,
		Height:   24,
	}, state)
	assert.False(t, state.Clickable())

	detached, err := parseState(map[string]interface{}{"attached": false})
	require.NoError(t, err)
	assert.False(t, detached.Attached)

	_, err = parseState("nope")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil))

	testCases := []struct {
		msg       string
		transient bool
		closed    bool
	}{
		{"stale element reference: element is not attached to the page document", true, false},
		{"Element is not attached to the DOM", true, false},
		{"Could not find node with given id (-32000)", true, false},
		{"Execution context was destroyed, most likely because of a navigation", true, false},
		{"Target closed", false, true},
		{"invalid session id", false, true},
		{"net::ERR_NAME_NOT_RESOLVED", false, false},
	}
	for _, tc := range testCases {
		cause := errors.New(tc.msg)
		err := classify(cause)
		assert.Equal(t, tc.transient, errs.IsTransient(err), tc.msg)
		assert.Equal(t, tc.closed, errors.Is(err, errs.ErrSessionClosed), tc.msg)
		assert.Contains(t, err.Error(), tc.msg)
	}
}

func TestIgnoreClosed(t *testing.T) {
	assert.NoError(t, ignoreClosed(errors.New("browser has been closed")))
	assert.NoError(t, ignoreClosed(errors.New("Target closed")))
	assert.Error(t, ignoreClosed(errors.New("permission denied")))
	assert.NoError(t, ignoreClosed(nil))
}

func TestNewProfile(t *testing.T) {
	fs := afero.NewMemMapFs()

	a, err := NewProfile(fs, "/tmp", entities.BrowserChrome, "gw1")
	require.NoError(t, err)
	b, err := NewProfile(fs, "/tmp", entities.BrowserChrome, "gw1")
	require.NoError(t, err)

	assert.NotEqual(t, a.Dir, b.Dir)
	prefix := fmt.Sprintf("chrome-user-data-gw1-%d-", os.Getpid())
	assert.True(t, strings.HasPrefix(filepath.Base(a.Dir), prefix), a.Dir)

	exists, err := afero.DirExists(fs, a.Dir)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, a.Remove())
	exists, err = afero.DirExists(fs, a.Dir)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCleanStaleProfiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger, _ := test.NewNullLogger()

	stale := "/tmp/chrome-user-data-gw0-0-0000"
	otherWorker := "/tmp/chrome-user-data-gw1-0-0000"
	otherBrowser := "/tmp/firefox-user-data-gw0-0-0000"
	for _, dir := range []string{stale, otherWorker, otherBrowser} {
		require.NoError(t, fs.MkdirAll(dir, 0o700))
	}
	own, err := NewProfile(fs, "/tmp", entities.BrowserChrome, "gw0")
	require.NoError(t, err)

	CleanStaleProfiles(fs, "/tmp", entities.BrowserChrome, "gw0", logger)

	for dir, want := range map[string]bool{
		stale:        false,
		otherWorker:  true,
		otherBrowser: true,
		own.Dir:      true,
	} {
		exists, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		assert.Equal(t, want, exists, dir)
	}
}

func TestChromiumArgs(t *testing.T) {
	cfg, _ := config.Builtin("dev")
	cfg.Headless = false

	args := chromiumArgs(cfg)
	assert.Contains(t, args, "--no-sandbox")
	assert.Contains(t, args, "--window-size=1920,1080")
	assert.NotContains(t, args, "--headless=new")

	cfg.Headless = true
	assert.Contains(t, chromiumArgs(cfg), "--headless=new")
	assert.Contains(t, firefoxArgs(cfg), "--headless")
}

func TestWebDriverCapabilities(t *testing.T) {
	cfg, _ := config.Builtin("dev")

	cfg.Browser = entities.BrowserEdge
	caps, err := webDriverCapabilities(cfg, "/tmp/profile", true)
	require.NoError(t, err)
	assert.Equal(t, "MicrosoftEdge", caps["browserName"])
	edge, ok := caps["ms:edgeOptions"].(map[string]interface{})
	require.True(t, ok)
	assert.NotContains(t, edge["args"], "--user-data-dir=/tmp/profile")

	cfg.Browser = entities.BrowserChrome
	caps, err = webDriverCapabilities(cfg, "/tmp/profile", false)
	require.NoError(t, err)
	assert.Equal(t, "chrome", caps["browserName"])

	cfg.Browser = "safari"
	_, err = webDriverCapabilities(cfg, "/tmp/profile", false)
	assert.ErrorIs(t, err, errs.ErrUnsupportedBrowser)
}

func TestFindDriverPrefersConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chromedriver")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

	got, err := findDriver(entities.BrowserChrome, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = findDriver("safari", "")
	assert.Error(t, err)
}

type factoryFixture struct {
	factory  *Factory
	fs       afero.Fs
	sessions []*fakebrowser.Session
	dirs     []string
}

func newFactoryFixture(t *testing.T) *factoryFixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &factoryFixture{fs: afero.NewMemMapFs()}
	launch := func(ctx context.Context, cfg config.Config, profileDir string, log logrus.FieldLogger) (interfaces.Session, error) {
		s := fakebrowser.New()
		f.sessions = append(f.sessions, s)
		f.dirs = append(f.dirs, profileDir)
		return s, nil
	}
	f.factory = &Factory{
		Fs:   f.fs,
		Root: "/tmp",
		Launchers: map[entities.DriverKind]Launcher{
			entities.DriverPlaywright: launch,
			entities.DriverCDP:        launch,
		},
		log: logger,
	}
	return f
}

func TestAcquireAndRelease(t *testing.T) {
	f := newFactoryFixture(t)
	cfg, _ := config.Builtin("dev")

	session, release, err := f.factory.Acquire(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Len(t, f.dirs, 1)

	exists, err := afero.DirExists(f.fs, f.dirs[0])
	require.NoError(t, err)
	assert.True(t, exists)

	release()
	release()

	assert.True(t, f.sessions[0].Closed())
	exists, err = afero.DirExists(f.fs, f.dirs[0])
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAcquireGivesEachSessionItsOwnProfile(t *testing.T) {
	f := newFactoryFixture(t)
	cfg, _ := config.Builtin("dev")

	_, releaseA, err := f.factory.Acquire(context.Background(), cfg)
	require.NoError(t, err)
	defer releaseA()
	_, releaseB, err := f.factory.Acquire(context.Background(), cfg)
	require.NoError(t, err)
	defer releaseB()

	require.Len(t, f.dirs, 2)
	assert.NotEqual(t, f.dirs[0], f.dirs[1])
}

func TestAcquireRejectsUnsupportedCombination(t *testing.T) {
	f := newFactoryFixture(t)
	cfg, _ := config.Builtin("dev")
	cfg.Driver = entities.DriverCDP
	cfg.Browser = entities.BrowserFirefox

	_, _, err := f.factory.Acquire(context.Background(), cfg)
	assert.ErrorIs(t, err, errs.ErrUnsupportedBrowser)
	assert.Empty(t, f.dirs)

	cfg.Driver = entities.DriverWebDriver
	cfg.Browser = entities.BrowserChrome
	_, _, err = f.factory.Acquire(context.Background(), cfg)
	assert.ErrorIs(t, err, errs.ErrUnsupportedBrowser)
}

func TestAcquireRemovesProfileWhenLaunchFails(t *testing.T) {
	f := newFactoryFixture(t)
	cfg, _ := config.Builtin("dev")

	var profileDir string
	f.factory.Launchers[entities.DriverPlaywright] = func(ctx context.Context, cfg config.Config, dir string, log logrus.FieldLogger) (interfaces.Session, error) {
		profileDir = dir
		return nil, errors.New("executable doesn't exist")
	}

	_, _, err := f.factory.Acquire(context.Background(), cfg)
	require.Error(t, err)
	require.NotEmpty(t, profileDir)

	exists, err := afero.DirExists(f.fs, profileDir)
	require.NoError(t, err)
	assert.False(t, exists)
}
