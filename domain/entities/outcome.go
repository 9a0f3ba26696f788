package entities

import "time"

// OutcomeKind is the tag of an Outcome
type OutcomeKind int

const (
	// NotFound means the predicate was checked once and failed with no
	// budget left to retry.
	NotFound OutcomeKind = iota
	// Found means the predicate was satisfied.
	Found
	// TimedOut means polling continued until the deadline elapsed.
	TimedOut
)

func (k OutcomeKind) String() string {
	switch k {
	case Found:
		return "found"
	case TimedOut:
		return "timed_out"
	default:
		return "not_found"
	}
}

// Outcome is the result of a probe. It never carries a partial state:
// Elements is non-empty only when Kind is Found.
type Outcome[E any] struct {
	Kind     OutcomeKind
	Selector Selector
	Elements []E
	Elapsed  time.Duration
	Polls    int
	LastErr  error
}

// Found reports whether the probe was satisfied
func (o Outcome[E]) Found() bool {
	return o.Kind == Found
}

// First returns the first element of a satisfied outcome
func (o Outcome[E]) First() (E, bool) {
	var zero E
	if o.Kind != Found || len(o.Elements) == 0 {
		return zero, false
	}
	return o.Elements[0], true
}
