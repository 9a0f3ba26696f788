package security

import (
	"strings"

	"github.com/sirupsen/logrus"

	"authflow_automation/domain/entities"
	"authflow_automation/domain/interfaces"
)

// Mask replaces sensitive text in logs
const Mask = "********"

var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "credential",
}

// Redactor hides text typed into secret fields
type Redactor struct {
	logger    logrus.FieldLogger
	selectors map[string]bool
}

// NewRedactor - creates a redactor that also treats the given selectors as secret
func NewRedactor(logger logrus.FieldLogger, secretSelectors ...string) *Redactor {
	r := &Redactor{
		logger:    logger,
		selectors: make(map[string]bool, len(secretSelectors)),
	}
	for _, sel := range secretSelectors {
		if sel != "" {
			r.selectors[sel] = true
		}
	}
	return r
}

// IsSensitive - reports whether text typed into selector must not be logged
func (r *Redactor) IsSensitive(selector entities.Selector) bool {
	if r.selectors[selector.Value] {
		return true
	}

	lowerSelector := strings.ToLower(selector.Value)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerSelector, keyword) {
			return true
		}
	}
	return false
}

// Redact - returns the loggable form of text typed into selector
func (r *Redactor) Redact(selector entities.Selector, text string) string {
	if !r.IsSensitive(selector) {
		return text
	}
	if text != "" {
		r.logger.WithField("selector", selector.Value).Debug("Redacted sensitive input")
		return Mask
	}
	return ""
}

// RedactAction - returns a copy of action safe to log or persist
func (r *Redactor) RedactAction(action entities.Action) entities.Action {
	if action.Type == entities.ActionTypeText {
		action.Text = r.Redact(entities.CSS(action.Selector), action.Text)
	}
	return action
}

// Ensure Redactor implements Redactor interface
var _ interfaces.Redactor = (*Redactor)(nil)
