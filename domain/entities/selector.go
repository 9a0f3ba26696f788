package entities

// SelectorStrategy tells the session how to interpret a selector value
type SelectorStrategy string

const (
	StrategyCSS SelectorStrategy = "css"
)

// Selector identifies zero or more elements in the current document.
// It is an immutable value supplied by callers.
type Selector struct {
	Value    string           `json:"value" yaml:"value"`
	Strategy SelectorStrategy `json:"type" yaml:"type"`
}

// CSS builds a css selector
func CSS(value string) Selector {
	return Selector{Value: value, Strategy: StrategyCSS}
}

// String returns the raw selector value
func (s Selector) String() string {
	return s.Value
}

// IsZero reports whether the selector has no value
func (s Selector) IsZero() bool {
	return s.Value == ""
}
