package browser

import (
	"fmt"

	"authflow_automation/domain/entities"
)

// stateFunction reads an ElementState in one round trip. The element is the
// first argument (playwright, webdriver) or the receiver (CDP). Elements
// whose centre lies outside the viewport are scrolled into view before the
// hit-target check.
const stateFunction = `function(el) {
	el = el || this;
	if (!el || !el.isConnected) {
		return { attached: false };
	}
	const measure = () => el.getBoundingClientRect();
	let rect = measure();
	const style = window.getComputedStyle(el);
	const visible = rect.width > 0 && rect.height > 0 &&
		style.visibility !== 'hidden' && style.display !== 'none' && style.opacity !== '0';
	const enabled = !el.disabled && el.getAttribute('aria-disabled') !== 'true';
	const tag = el.tagName.toLowerCase();
	const editable = enabled && !el.readOnly &&
		(tag === 'input' || tag === 'textarea' || el.isContentEditable);

	let x = rect.left + rect.width / 2;
	let y = rect.top + rect.height / 2;
	if (visible && (x < 0 || y < 0 || x > window.innerWidth || y > window.innerHeight)) {
		el.scrollIntoView({ block: 'center', inline: 'center' });
		rect = measure();
		x = rect.left + rect.width / 2;
		y = rect.top + rect.height / 2;
	}

	let obscured = false;
	if (visible) {
		const hit = document.elementFromPoint(x, y);
		obscured = !hit || !(hit === el || el.contains(hit));
	}
	return {
		attached: true, visible: visible, enabled: enabled, editable: editable,
		obscured: obscured, x: x, y: y, width: rect.width, height: rect.height
	};
}`

// textFunction returns the rendered text of the receiver
const textFunction = `function() { return this.innerText; }`

// parseState - converts the object returned by stateFunction
func parseState(raw interface{}) (entities.ElementState, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return entities.ElementState{}, fmt.Errorf("unexpected element state %T", raw)
	}
	return entities.ElementState{
		Attached: getBool(m, "attached"),
		Visible:  getBool(m, "visible"),
		Enabled:  getBool(m, "enabled"),
		Editable: getBool(m, "editable"),
		Obscured: getBool(m, "obscured"),
		Center: entities.Position{
			X: getFloat(m, "x"),
			Y: getFloat(m, "y"),
		},
		Width:  getFloat(m, "width"),
		Height: getFloat(m, "height"),
	}, nil
}

// getBool - extracts boolean value from map
func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// getFloat - extracts numeric value from map
func getFloat(m map[string]interface{}, key string) float64 {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case float64:
			return val
		case int:
			return float64(val)
		case int64:
			return float64(val)
		}
	}
	return 0
}
