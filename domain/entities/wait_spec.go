package entities

import "time"

// PredicateKind selects the condition a wait checks
type PredicateKind string

const (
	PredicatePresence     PredicateKind = "presence"
	PredicateVisibility   PredicateKind = "visibility"
	PredicateClickability PredicateKind = "clickability"
	PredicateCustom       PredicateKind = "custom"
)

// WaitSpec describes a single wait. It is created per call and discarded
// after resolution.
type WaitSpec struct {
	Selector     Selector
	Predicate    PredicateKind
	Timeout      time.Duration
	PollInterval time.Duration
}
