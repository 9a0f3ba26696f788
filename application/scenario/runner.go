package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"authflow_automation/application/facade"
	"authflow_automation/domain/entities"
	"authflow_automation/domain/interfaces"
	"authflow_automation/infrastructure/config"
	"authflow_automation/infrastructure/security"
)

// Acquirer opens a session for one scenario on the named worker. The
// returned release func must be called once the scenario is done.
type Acquirer func(ctx context.Context, worker string) (interfaces.Session, func(), error)

// Runner executes scenarios, each with its own freshly acquired session
type Runner struct {
	cfg     config.Config
	acquire Acquirer
	store   interfaces.ArtifactStore
	log     logrus.FieldLogger
	workers int
	now     func() time.Time
}

// NewRunner - creates a runner. workers below 1 runs scenarios one by one.
func NewRunner(cfg config.Config, acquire Acquirer, store interfaces.ArtifactStore, log logrus.FieldLogger, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		cfg:     cfg,
		acquire: acquire,
		store:   store,
		log:     log,
		workers: workers,
		now:     time.Now,
	}
}

// Run executes scenarios and returns their results in input order. Workers
// are named gw0, gw1, ... and each runs one scenario at a time.
func (r *Runner) Run(ctx context.Context, scenarios ...Scenario) []entities.ScenarioResult {
	results := make([]entities.ScenarioResult, len(scenarios))
	for i, sc := range scenarios {
		results[i] = entities.ScenarioResult{Name: sc.Name, Status: entities.ScenarioStatusPending}
	}

	workers := make(chan string, r.workers)
	for i := 0; i < r.workers; i++ {
		workers <- fmt.Sprintf("gw%d", i)
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			worker := <-workers
			defer func() { workers <- worker }()
			results[i] = r.runOne(ctx, sc, worker)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runOne - runs a scenario with its own session, released on every path
func (r *Runner) runOne(ctx context.Context, sc Scenario, worker string) entities.ScenarioResult {
	log := r.log.WithFields(logrus.Fields{
		"scenario": sc.Name,
		"worker":   worker,
	})
	start := r.now()
	result := entities.ScenarioResult{Name: sc.Name, Status: entities.ScenarioStatusRunning}

	finish := func(err error) entities.ScenarioResult {
		result.Duration = r.now().Sub(start)
		if err != nil {
			result.Status = entities.ScenarioStatusFailed
			result.Error = err.Error()
			log.WithError(err).Errorf("Scenario failed in %s", result.Duration.Round(time.Millisecond))
		} else {
			result.Status = entities.ScenarioStatusPassed
			log.Infof("Scenario passed in %s", result.Duration.Round(time.Millisecond))
		}
		return result
	}

	if err := ctx.Err(); err != nil {
		return finish(fmt.Errorf("scenario not started: %w", err))
	}

	log.Info("Scenario started")
	session, release, err := r.acquire(ctx, worker)
	if err != nil {
		return finish(fmt.Errorf("failed to acquire browser: %w", err))
	}
	defer release()

	redactor := security.NewRedactor(log, r.cfg.Selectors.Login.Password)
	page := facade.NewPage(session, r.store, redactor, log, facade.Timeouts{
		Explicit: r.cfg.ExplicitWait,
		PageLoad: r.cfg.PageLoadTimeout,
		Poll:     r.cfg.PollInterval,
	})
	env := newEnv(page, r.cfg, log)

	err = r.execute(ctx, sc, env, redactor)
	result.Steps = env.steps
	if err != nil {
		// a cancelled run still gets its screenshot
		path, shotErr := page.TakeScreenshot(context.WithoutCancel(ctx), "failure_"+slug(sc.Name))
		if shotErr != nil {
			log.WithError(shotErr).Warn("Failed to capture failure screenshot")
		} else {
			result.Screenshot = path
		}
	}
	return finish(err)
}

func (r *Runner) execute(ctx context.Context, sc Scenario, env *Env, redactor *security.Redactor) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scenario panicked: %v", p)
		}
	}()

	if sc.Run == nil && len(sc.Steps) == 0 {
		return errors.New("scenario has no steps")
	}
	if sc.Run != nil {
		if err := sc.Run(ctx, env); err != nil {
			return err
		}
	}
	for _, action := range sc.Steps {
		env.Log.WithField("action", redactor.RedactAction(action)).Debug("Executing step")
		if err := env.Execute(ctx, redactor, action); err != nil {
			return err
		}
	}
	return nil
}

// Summary counts results by status
func Summary(results []entities.ScenarioResult) (passed, failed int) {
	for _, res := range results {
		switch res.Status {
		case entities.ScenarioStatusPassed:
			passed++
		case entities.ScenarioStatusFailed:
			failed++
		}
	}
	return passed, failed
}
