package entities

// ActionType represents the type of a scripted scenario step
type ActionType string

const (
	ActionNavigate    ActionType = "navigate"
	ActionClick       ActionType = "click"
	ActionTypeText    ActionType = "type"
	ActionWaitVisible ActionType = "wait_visible"
	ActionAssertURL   ActionType = "assert_url"
	ActionAssertText  ActionType = "assert_text"
	ActionScreenshot  ActionType = "screenshot"
)

// Action represents a single step of a scripted scenario
type Action struct {
	Type        ActionType `json:"type" yaml:"type"`
	Selector    string     `json:"selector,omitempty" yaml:"selector,omitempty"`
	Text        string     `json:"text,omitempty" yaml:"text,omitempty"`
	URL         string     `json:"url,omitempty" yaml:"url,omitempty"`
	Description string     `json:"description" yaml:"description"`
}

// ActionResult represents the result of a step
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}
