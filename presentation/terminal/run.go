package terminal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"authflow_automation/application/scenario"
	"authflow_automation/infrastructure/config"
	"authflow_automation/infrastructure/logging"
	"authflow_automation/infrastructure/storage"
)

type runCmd struct {
	gs        *globalState
	noColor   *bool
	overrides overrideFlags

	suite       string
	scriptsFile string
	workers     int
}

func newRunCommand(gs *globalState, noColor *bool) *cobra.Command {
	c := &runCmd{gs: gs, noColor: noColor}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a test suite against the application under test",
		Long: "Run a built-in suite (" + strings.Join(scenario.SuiteNames(), ", ") + ") or scripted " +
			"scenarios from a YAML file. Every scenario gets its own browser session.",
		Example: "  authflow run --suite login --browser firefox\n" +
			"  authflow run --scenarios checkout.yaml --workers 2",
		Args: cobra.NoArgs,
		RunE: c.run,
	}
	c.overrides.register(cmd)

	flags := cmd.Flags()
	flags.StringVar(&c.suite, "suite", "smoke", "built-in suite to run")
	flags.StringVar(&c.scriptsFile, "scenarios", "", "YAML file with scripted scenarios, replaces --suite")
	flags.IntVar(&c.workers, "workers", 1, "number of scenarios run in parallel")
	return cmd
}

func (c *runCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := c.gs.loadConfig(c.overrides.resolve(cmd))
	if err != nil {
		return err
	}

	scenarios, err := c.scenarios(cfg)
	if err != nil {
		return err
	}

	// the log file outlives the run context so cancellation is still logged
	logCtx, stopLog := context.WithCancel(context.Background())
	logger, hook, err := logging.New(logCtx, logging.Options{
		Level:   cfg.LogLevel,
		Dir:     cfg.LogDir,
		Console: c.gs.stderr,
		Fs:      c.gs.fs,
	})
	if err != nil {
		stopLog()
		return err
	}
	defer func() {
		stopLog()
		if hook != nil {
			<-hook.Done()
		}
	}()

	store := storage.NewArtifacts(c.gs.fs, cfg.ScreenshotDir)
	if _, err := storage.WriteEnvironment(c.gs.fs, cfg.AllureResultsDir, cfg.EnvironmentProperties()); err != nil {
		logger.WithError(err).Warn("Failed to write environment properties")
	}

	logger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"browser":     cfg.Browser,
		"driver":      cfg.Driver,
		"scenarios":   len(scenarios),
		"workers":     c.workers,
	}).Info("Starting test run")

	started := time.Now()
	runner := scenario.NewRunner(cfg, c.gs.newAcquirer(cfg, logger, c.workers), store, logger, c.workers)
	results := runner.Run(cmd.Context(), scenarios...)

	report := storage.Report{
		StartedAt:   started,
		Environment: cfg.Environment,
		Browser:     string(cfg.Browser),
		Driver:      string(cfg.Driver),
		Results:     results,
	}
	reportPath, err := storage.SaveReport(c.gs.fs, cfg.ReportDir, report)
	if err != nil {
		logger.WithError(err).Error("Failed to save report")
	}

	passed, failed := scenario.Summary(results)
	logger.WithFields(logrus.Fields{
		"passed":   passed,
		"failed":   failed,
		"duration": time.Since(started).Round(time.Millisecond),
	}).Info("Test run finished")

	p := newPrinter(cmd.OutOrStdout(), *c.noColor)
	p.results(results)
	p.summary(passed, failed, reportPath)

	if !report.Passed() {
		return fmt.Errorf("%d of %d scenarios failed", len(results)-passed, len(results))
	}
	return nil
}

func (c *runCmd) scenarios(cfg config.Config) ([]scenario.Scenario, error) {
	if c.scriptsFile != "" {
		return scenario.LoadScripts(c.gs.fs, c.scriptsFile)
	}
	return scenario.Suite(c.suite, cfg)
}
