//go:build e2e

package scenario_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authflow_automation/application/scenario"
	"authflow_automation/domain/entities"
	"authflow_automation/domain/interfaces"
	"authflow_automation/infrastructure/browser"
	"authflow_automation/infrastructure/config"
	"authflow_automation/infrastructure/storage"
)

// TestLoginSuiteE2E drives a real browser against the configured
// environment. Run with: go test -tags e2e ./application/scenario/
func TestLoginSuiteE2E(t *testing.T) {
	cfg, err := config.FromEnvironment(config.Overrides{})
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)

	store := storage.NewArtifacts(afero.NewOsFs(), cfg.ScreenshotDir)

	scenarios, err := scenario.Suite("login", cfg)
	require.NoError(t, err)

	acquire := func(ctx context.Context, worker string) (interfaces.Session, func(), error) {
		return browser.Acquire(ctx, cfg, log.WithField("worker", worker))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	results := scenario.NewRunner(cfg, acquire, store, log, 1).Run(ctx, scenarios...)
	require.Len(t, results, len(scenarios))
	for _, res := range results {
		assert.Equal(t, entities.ScenarioStatusPassed, res.Status, "%s: %s", res.Name, res.Error)
	}
}
