package browser

import (
	"fmt"
	"strings"

	"authflow_automation/domain/errs"
)

// Driver libraries do not export typed errors for these conditions, so they
// are recognised by message.
var (
	closedMarkers = []string{
		"target closed",
		"has been closed",
		"browser has disconnected",
		"invalid session id",
		"session deleted",
		"chrome not reachable",
	}

	transientMarkers = []string{
		"stale element",
		"not attached to the dom",
		"no such element",
		"could not find node",
		"no node with given id",
		"execution context was destroyed",
		"cannot find context with specified id",
		"frame was detached",
	}
)

// classify - maps a driver error onto the session error taxonomy
func classify(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, closedMarkers):
		return fmt.Errorf("%w: %v", errs.ErrSessionClosed, err)
	case containsAny(msg, transientMarkers):
		return errs.Transient(err)
	}
	return err
}

// ignoreClosed - drops errors caused by tearing down an already closed browser
func ignoreClosed(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "closed") || containsAny(msg, closedMarkers) {
		return nil
	}
	return err
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
