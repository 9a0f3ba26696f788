// Package browser opens live browser sessions. The driver (playwright, CDP or
// WebDriver) and browser are chosen once per session from the run
// configuration; callers only see interfaces.Session.
package browser

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"authflow_automation/domain/entities"
	"authflow_automation/domain/errs"
	"authflow_automation/domain/interfaces"
	"authflow_automation/infrastructure/config"
)

// Launcher starts a browser that stores its state in profileDir
type Launcher func(ctx context.Context, cfg config.Config, profileDir string, log logrus.FieldLogger) (interfaces.Session, error)

// Factory acquires sessions with isolated profile directories
type Factory struct {
	Fs        afero.Fs
	Root      string
	Launchers map[entities.DriverKind]Launcher
	log       logrus.FieldLogger
}

// NewFactory - creates a factory that launches real browsers under the
// system temp directory
func NewFactory(log logrus.FieldLogger) *Factory {
	return &Factory{
		Fs:   afero.NewOsFs(),
		Root: os.TempDir(),
		Launchers: map[entities.DriverKind]Launcher{
			entities.DriverPlaywright: launchPlaywright,
			entities.DriverCDP:        launchCDP,
			entities.DriverWebDriver:  launchWebDriver,
		},
		log: log,
	}
}

// Acquire opens a session with a fresh profile directory. The returned
// release func closes the session and deletes the profile; it is safe to call
// more than once and must be called on every exit path.
func (f *Factory) Acquire(ctx context.Context, cfg config.Config) (interfaces.Session, func(), error) {
	if !cfg.Driver.Supports(cfg.Browser) {
		return nil, nil, fmt.Errorf("%w: %s cannot drive %s", errs.ErrUnsupportedBrowser, cfg.Driver, cfg.Browser)
	}
	launch, ok := f.Launchers[cfg.Driver]
	if !ok {
		return nil, nil, fmt.Errorf("%w: no launcher for driver %s", errs.ErrUnsupportedBrowser, cfg.Driver)
	}

	log := f.log.WithFields(logrus.Fields{
		"browser": cfg.Browser,
		"driver":  cfg.Driver,
		"worker":  cfg.WorkerID,
	})

	CleanStaleProfiles(f.Fs, f.Root, cfg.Browser, cfg.WorkerID, log)
	profile, err := NewProfile(f.Fs, f.Root, cfg.Browser, cfg.WorkerID)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("Created unique user data directory: %s", profile.Dir)

	session, err := launch(ctx, cfg, profile.Dir, log)
	if err != nil {
		if rmErr := profile.Remove(); rmErr != nil {
			log.WithError(rmErr).Warn("Error cleaning up user data directory after failure")
		}
		log.WithError(err).Errorf("Failed to create %s session", cfg.Browser)
		return nil, nil, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := session.Close(); err != nil {
				log.WithError(err).Warn("Error during driver cleanup")
			}
			if err := profile.Remove(); err != nil {
				log.WithError(err).Warn("Error cleaning up user data directory")
			}
			log.Info("Browser closed")
		})
	}

	log.Info("Browser started")
	return session, release, nil
}

// Acquire opens a real browser session for cfg
func Acquire(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (interfaces.Session, func(), error) {
	return NewFactory(log).Acquire(ctx, cfg)
}
