package terminal

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"authflow_automation/application/scenario"
	"authflow_automation/domain/interfaces"
	"authflow_automation/infrastructure/browser"
	"authflow_automation/infrastructure/config"
)

// globalState holds everything the commands touch outside the process, so
// tests can swap in an in-memory filesystem and fake browsers.
type globalState struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer

	loadConfig  func(overrides config.Overrides) (config.Config, error)
	newAcquirer func(cfg config.Config, log logrus.FieldLogger, workers int) scenario.Acquirer
}

func newGlobalState() *globalState {
	return &globalState{
		fs:          afero.NewOsFs(),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		loadConfig:  config.FromEnvironment,
		newAcquirer: browserAcquirer,
	}
}

// browserAcquirer - launches real browsers. Parallel workers get their own
// worker id so their profile directories never collide.
func browserAcquirer(cfg config.Config, log logrus.FieldLogger, workers int) scenario.Acquirer {
	factory := browser.NewFactory(log)
	return func(ctx context.Context, worker string) (interfaces.Session, func(), error) {
		c := cfg
		if workers > 1 {
			c.WorkerID = cfg.WorkerID + "." + worker
		}
		return factory.Acquire(ctx, c)
	}
}
