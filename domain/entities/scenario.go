package entities

import "time"

// ScenarioResult represents the outcome of one scenario run
type ScenarioResult struct {
	Name       string         `json:"name"`
	Status     ScenarioStatus `json:"status"`
	Duration   time.Duration  `json:"duration"`
	Error      string         `json:"error,omitempty"`
	Screenshot string         `json:"screenshot,omitempty"`
	Steps      []ActionResult `json:"steps,omitempty"`
}

// ScenarioStatus represents the status of a scenario
type ScenarioStatus string

const (
	ScenarioStatusPending ScenarioStatus = "pending"
	ScenarioStatusRunning ScenarioStatus = "running"
	ScenarioStatusPassed  ScenarioStatus = "passed"
	ScenarioStatusFailed  ScenarioStatus = "failed"
)
