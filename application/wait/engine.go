// Package wait polls browser predicates until they hold or a deadline passes.
//
// Polling is synchronous: the predicate runs on the caller's goroutine and
// the engine sleeps between polls. No goroutine is started.
package wait

import (
	"context"
	"fmt"
	"time"

	"authflow_automation/domain/errs"
)

// DefaultPollInterval is used when a Spec leaves PollInterval unset
const DefaultPollInterval = 200 * time.Millisecond

// Spec configures a single wait
type Spec struct {
	// Selector is reported in errors; it may be empty for non-element waits
	Selector     string
	Timeout      time.Duration
	PollInterval time.Duration
}

// Result describes how a wait resolved
type Result struct {
	Elapsed time.Duration
	Polls   int
	LastErr error
}

// Condition is evaluated on every poll. Returning ok=false means "not yet".
// An error wrapping errs.ErrTransient is treated the same as ok=false; any
// other error aborts the wait.
type Condition[T any] func(ctx context.Context) (value T, ok bool, err error)

// Until polls cond until it is satisfied or spec.Timeout elapses.
//
// cond is always invoked at least once, even for a zero or negative timeout.
// On timeout the error is an *errs.WaitTimeoutError carrying the last
// transient error observed.
func Until[T any](ctx context.Context, spec Spec, cond Condition[T]) (T, Result, error) {
	var (
		zero T
		res  Result
	)

	interval := spec.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	start := time.Now()
	deadline := start.Add(spec.Timeout)

	for {
		res.Polls++
		value, ok, err := cond(ctx)
		switch {
		case err == nil && ok:
			res.Elapsed = time.Since(start)
			return value, res, nil
		case err != nil && !errs.IsTransient(err):
			res.Elapsed = time.Since(start)
			res.LastErr = err
			return zero, res, err
		case err != nil:
			res.LastErr = err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			res.Elapsed = time.Since(start)
			return zero, res, &errs.WaitTimeoutError{
				Selector: spec.Selector,
				Elapsed:  res.Elapsed,
				Polls:    res.Polls,
				LastErr:  res.LastErr,
			}
		}

		timer := time.NewTimer(min(interval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			res.Elapsed = time.Since(start)
			if spec.Selector == "" {
				return zero, res, ctx.Err()
			}
			return zero, res, fmt.Errorf("waiting for %q: %w", spec.Selector, ctx.Err())
		case <-timer.C:
		}
	}
}

// Await is Until for predicates that only produce a boolean.
func Await(ctx context.Context, spec Spec, pred func(ctx context.Context) (bool, error)) (Result, error) {
	_, res, err := Until(ctx, spec, func(ctx context.Context) (struct{}, bool, error) {
		ok, err := pred(ctx)
		return struct{}{}, ok, err
	})
	return res, err
}
