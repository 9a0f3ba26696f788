package entities

// ElementState is a snapshot of a located element taken in one round trip
type ElementState struct {
	Attached bool     `json:"attached"`
	Visible  bool     `json:"visible"`  // non-zero rendered size and not hidden
	Enabled  bool     `json:"enabled"`  // not disabled
	Editable bool     `json:"editable"` // accepts text input
	Obscured bool     `json:"obscured"` // another element receives the click at Center
	Center   Position `json:"center"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
}

// Position represents a point in viewport coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Clickable reports whether a click at the element centre would reach it
func (s ElementState) Clickable() bool {
	return s.Attached && s.Visible && s.Enabled && !s.Obscured
}
