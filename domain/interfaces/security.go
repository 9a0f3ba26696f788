package interfaces

import "authflow_automation/domain/entities"

// Redactor decides how typed text appears in logs
type Redactor interface {
	// IsSensitive reports whether text typed into selector must be hidden
	IsSensitive(selector entities.Selector) bool

	// Redact returns the loggable form of text typed into selector
	Redact(selector entities.Selector, text string) string
}
