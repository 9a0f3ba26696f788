package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"authflow_automation/application/wait"
	"authflow_automation/domain/entities"
	"authflow_automation/domain/errs"
	"authflow_automation/domain/interfaces"
)

// Execute runs a single scripted step and records its result. Text typed
// into secret fields is masked in the recorded message.
func (e *Env) Execute(ctx context.Context, redactor interfaces.Redactor, action entities.Action) error {
	description := action.Description
	if description == "" {
		description = describe(action)
	}

	data, err := e.execute(ctx, action)
	result := entities.ActionResult{
		Success: err == nil,
		Message: description,
		Data:    data,
	}
	if err != nil {
		result.Error = err.Error()
	}
	if action.Type == entities.ActionTypeText && action.Text != "" && redactor != nil {
		result.Message = strings.ReplaceAll(result.Message, action.Text, redactor.Redact(entities.CSS(action.Selector), action.Text))
	}
	e.steps = append(e.steps, result)

	if err != nil {
		e.Log.WithError(err).Errorf("Step failed: %s", result.Message)
		return err
	}
	e.Log.Infof("Step passed: %s", result.Message)
	return nil
}

// execute - dispatches one action to the page facade
func (e *Env) execute(ctx context.Context, action entities.Action) (string, error) {
	switch action.Type {
	case entities.ActionNavigate:
		if action.URL == "" {
			return "", fmt.Errorf("url parameter is required for navigate action")
		}
		url := action.URL
		if strings.HasPrefix(url, "/") {
			url = strings.TrimRight(e.Config.BaseURL, "/") + url
		}
		return url, e.Page.Navigate(ctx, url)

	case entities.ActionClick:
		if action.Selector == "" {
			return "", fmt.Errorf("selector parameter is required for click action")
		}
		return "", e.Page.Click(ctx, entities.CSS(action.Selector))

	case entities.ActionTypeText:
		if action.Selector == "" {
			return "", fmt.Errorf("selector parameter is required for type action")
		}
		return "", e.Page.InputText(ctx, entities.CSS(action.Selector), action.Text)

	case entities.ActionWaitVisible:
		if action.Selector == "" {
			return "", fmt.Errorf("selector parameter is required for wait_visible action")
		}
		_, err := e.Page.FindElement(ctx, entities.CSS(action.Selector))
		return "", err

	case entities.ActionAssertURL:
		if action.URL == "" {
			return "", fmt.Errorf("url parameter is required for assert_url action")
		}
		return e.Page.Locator().WaitURL(ctx, func(url string) bool {
			return strings.Contains(url, action.URL)
		}, e.Config.ImplicitWait)

	case entities.ActionAssertText:
		if action.Selector == "" {
			return "", fmt.Errorf("selector parameter is required for assert_text action")
		}
		return e.assertText(ctx, entities.CSS(action.Selector), action.Text)

	case entities.ActionScreenshot:
		name := action.Text
		if name == "" {
			name = "step"
		}
		return e.Page.TakeScreenshot(ctx, slug(name))

	default:
		return "", fmt.Errorf("unknown action: %s", action.Type)
	}
}

// assertText - waits until a visible element matching selector contains want
func (e *Env) assertText(ctx context.Context, selector entities.Selector, want string) (string, error) {
	loc := e.Page.Locator()
	var seen string

	text, _, err := wait.Until(ctx, wait.Spec{
		Selector:     selector.Value,
		Timeout:      e.Config.ExplicitWait,
		PollInterval: e.Page.Timeouts().Poll,
	}, func(ctx context.Context) (string, bool, error) {
		out := loc.Probe(ctx, entities.WaitSpec{
			Selector:  selector,
			Predicate: entities.PredicateVisibility,
		})
		el, ok := out.First()
		if !ok {
			if out.LastErr != nil && !errors.Is(out.LastErr, errs.ErrWaitTimeout) {
				return "", false, out.LastErr
			}
			return "", false, nil
		}
		text, err := el.Text(ctx)
		if err != nil {
			return "", false, err
		}
		seen = strings.TrimSpace(text)
		return seen, strings.Contains(seen, want), nil
	})
	if err != nil {
		return seen, fmt.Errorf("text %q not shown by %q (last seen %q): %w", want, selector.Value, seen, err)
	}
	return text, nil
}

// describe - builds a step description when the script has none
func describe(action entities.Action) string {
	switch action.Type {
	case entities.ActionNavigate, entities.ActionAssertURL:
		return fmt.Sprintf("%s %s", action.Type, action.URL)
	case entities.ActionTypeText:
		return fmt.Sprintf("type into %s", action.Selector)
	case entities.ActionScreenshot:
		return "screenshot " + action.Text
	default:
		return fmt.Sprintf("%s %s", action.Type, action.Selector)
	}
}
