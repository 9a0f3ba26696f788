// Package locator resolves selectors to live element handles.
//
// Every lookup re-queries the session on each poll; handles are never cached
// across waits.
package locator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"authflow_automation/application/wait"
	"authflow_automation/domain/entities"
	"authflow_automation/domain/errs"
	"authflow_automation/domain/interfaces"
)

// Outcome is the result of a probe over live elements
type Outcome = entities.Outcome[interfaces.Element]

// Locator applies presence, visibility and clickability predicates to the
// elements matching a selector.
type Locator struct {
	session      interfaces.Session
	log          logrus.FieldLogger
	pollInterval time.Duration
}

// New creates a locator bound to session. A zero pollInterval uses the
// wait engine default.
func New(session interfaces.Session, log logrus.FieldLogger, pollInterval time.Duration) *Locator {
	return &Locator{
		session:      session,
		log:          log,
		pollInterval: pollInterval,
	}
}

// Probe polls until an element matching spec satisfies its predicate.
//
// The result is Found with the matching elements, TimedOut once the budget
// elapsed, or NotFound when the single check of a zero-timeout probe failed.
// A fatal session error also yields NotFound, with LastErr set. For visibility
// and clickability only the first satisfying element is returned.
func (l *Locator) Probe(ctx context.Context, spec entities.WaitSpec) Outcome {
	interval := spec.PollInterval
	if interval <= 0 {
		interval = l.pollInterval
	}

	match, err := matcher(spec.Predicate)
	if err != nil {
		return Outcome{Kind: entities.NotFound, Selector: spec.Selector, LastErr: err}
	}

	elements, res, err := wait.Until(ctx, wait.Spec{
		Selector:     spec.Selector.Value,
		Timeout:      spec.Timeout,
		PollInterval: interval,
	}, func(ctx context.Context) ([]interfaces.Element, bool, error) {
		found, err := l.session.Query(ctx, spec.Selector)
		if err != nil {
			return nil, false, err
		}
		matched, err := match(ctx, found)
		return matched, len(matched) > 0, err
	})

	out := Outcome{
		Selector: spec.Selector,
		Elapsed:  res.Elapsed,
		Polls:    res.Polls,
	}
	switch {
	case err == nil:
		out.Kind = entities.Found
		out.Elements = elements
	case errors.Is(err, errs.ErrWaitTimeout) && spec.Timeout > 0:
		out.Kind = entities.TimedOut
		out.LastErr = err
	default:
		out.Kind = entities.NotFound
		out.LastErr = err
	}

	l.log.WithFields(logrus.Fields{
		"selector":  spec.Selector.Value,
		"predicate": spec.Predicate,
		"outcome":   out.Kind,
		"polls":     out.Polls,
		"elapsed":   out.Elapsed.Round(time.Millisecond),
	}).Debug("Wait resolved")

	return out
}

// FindOne waits for the first visible element matching selector
func (l *Locator) FindOne(ctx context.Context, selector entities.Selector, timeout time.Duration) (interfaces.Element, error) {
	out := l.Probe(ctx, entities.WaitSpec{
		Selector:  selector,
		Predicate: entities.PredicateVisibility,
		Timeout:   timeout,
	})
	if el, ok := out.First(); ok {
		return el, nil
	}
	return nil, &errs.LookupError{
		Kind:     errs.ErrElementNotFound,
		Selector: selector.Value,
		Timeout:  timeout,
		Cause:    out.LastErr,
	}
}

// FindMany waits for at least one element matching selector to exist.
// It returns an empty slice, never an error, when none appear in time.
func (l *Locator) FindMany(ctx context.Context, selector entities.Selector, timeout time.Duration) []interfaces.Element {
	out := l.Probe(ctx, entities.WaitSpec{
		Selector:  selector,
		Predicate: entities.PredicatePresence,
		Timeout:   timeout,
	})
	if !out.Found() {
		return []interfaces.Element{}
	}
	return out.Elements
}

// WaitClickable waits for an element that is visible, enabled and receives
// clicks at its centre point.
func (l *Locator) WaitClickable(ctx context.Context, selector entities.Selector, timeout time.Duration) (interfaces.Element, error) {
	out := l.Probe(ctx, entities.WaitSpec{
		Selector:  selector,
		Predicate: entities.PredicateClickability,
		Timeout:   timeout,
	})
	if el, ok := out.First(); ok {
		return el, nil
	}
	return nil, &errs.LookupError{
		Kind:     errs.ErrElementNotInteractable,
		Selector: selector.Value,
		Timeout:  timeout,
		Cause:    out.LastErr,
	}
}

// IsPresent reports whether a visible element appears within timeout
func (l *Locator) IsPresent(ctx context.Context, selector entities.Selector, timeout time.Duration) bool {
	return l.Probe(ctx, entities.WaitSpec{
		Selector:  selector,
		Predicate: entities.PredicateVisibility,
		Timeout:   timeout,
	}).Found()
}

// WaitURL polls the current URL until match accepts it and returns that URL
func (l *Locator) WaitURL(ctx context.Context, match func(url string) bool, timeout time.Duration) (string, error) {
	url, res, err := wait.Until(ctx, wait.Spec{
		Selector:     "current url",
		Timeout:      timeout,
		PollInterval: l.pollInterval,
	}, func(ctx context.Context) (string, bool, error) {
		url, err := l.session.CurrentURL(ctx)
		if err != nil {
			return "", false, err
		}
		return url, match(url), nil
	})

	l.log.WithFields(logrus.Fields{
		"predicate": entities.PredicateCustom,
		"polls":     res.Polls,
		"elapsed":   res.Elapsed.Round(time.Millisecond),
	}).Debug("URL wait resolved")

	return url, err
}

type matchFunc func(ctx context.Context, found []interfaces.Element) ([]interfaces.Element, error)

func matcher(kind entities.PredicateKind) (matchFunc, error) {
	switch kind {
	case entities.PredicatePresence:
		return func(_ context.Context, found []interfaces.Element) ([]interfaces.Element, error) {
			return found, nil
		}, nil
	case entities.PredicateVisibility:
		return firstWhere(func(s entities.ElementState) bool { return s.Attached && s.Visible }), nil
	case entities.PredicateClickability:
		return firstWhere(entities.ElementState.Clickable), nil
	default:
		return nil, fmt.Errorf("predicate %q cannot be probed by selector", kind)
	}
}

// firstWhere returns the first element whose state satisfies ok. Stale
// elements are skipped; if nothing matched, the last transient error is
// reported so the wait keeps it for diagnostics.
func firstWhere(ok func(entities.ElementState) bool) matchFunc {
	return func(ctx context.Context, found []interfaces.Element) ([]interfaces.Element, error) {
		var transient error
		for _, el := range found {
			state, err := el.State(ctx)
			if err != nil {
				if !errs.IsTransient(err) {
					return nil, err
				}
				transient = err
				continue
			}
			if ok(state) {
				return []interfaces.Element{el}, nil
			}
		}
		return nil, transient
	}
}
