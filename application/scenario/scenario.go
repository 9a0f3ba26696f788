// Package scenario runs named end-to-end flows, each against its own
// browser session, and records their results.
package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"authflow_automation/application/facade"
	"authflow_automation/application/pages"
	"authflow_automation/domain/entities"
	"authflow_automation/infrastructure/config"
)

// Scenario is one named flow. Run holds programmatic checks, Steps a
// scripted sequence; when both are set Run executes first.
type Scenario struct {
	Name  string            `yaml:"name"`
	Steps []entities.Action `yaml:"steps"`

	Run func(ctx context.Context, env *Env) error `yaml:"-"`
}

// Env is what a scenario sees of its session
type Env struct {
	Page      *facade.Page
	Login     *pages.Login
	Dashboard *pages.Dashboard
	Config    config.Config
	Log       logrus.FieldLogger

	steps []entities.ActionResult
}

func newEnv(page *facade.Page, cfg config.Config, log logrus.FieldLogger) *Env {
	return &Env{
		Page:      page,
		Login:     pages.NewLogin(page, cfg, log),
		Dashboard: pages.NewDashboard(page, cfg, log),
		Config:    cfg,
		Log:       log,
	}
}

// Step records the outcome of a named step and passes err through
func (e *Env) Step(description string, err error) error {
	result := entities.ActionResult{Success: err == nil, Message: description}
	if err != nil {
		result.Error = err.Error()
		e.Log.WithError(err).Errorf("Step failed: %s", description)
	} else {
		e.Log.Infof("Step passed: %s", description)
	}
	e.steps = append(e.steps, result)
	return err
}

// Check records a boolean assertion as a step
func (e *Env) Check(description string, ok bool) error {
	if ok {
		return e.Step(description, nil)
	}
	return e.Step(description, fmt.Errorf("assertion failed: %s", description))
}

// Attach captures a screenshot for the report. A failed capture is logged
// and never fails the scenario.
func (e *Env) Attach(ctx context.Context, name string) {
	path, err := e.Page.TakeScreenshot(ctx, name)
	if err != nil {
		e.Log.WithError(err).Warn("Failed to attach screenshot")
		return
	}
	e.steps = append(e.steps, entities.ActionResult{
		Success: true,
		Message: "attach " + name,
		Data:    path,
	})
}

// slug - makes a scenario name usable as a file name
func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
