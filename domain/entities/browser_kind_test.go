package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBrowserKind(t *testing.T) {
	testCases := []struct {
		in   string
		want BrowserKind
	}{
		{"chrome", BrowserChrome},
		{" Chrome ", BrowserChrome},
		{"chromium", BrowserChrome},
		{"firefox", BrowserFirefox},
		{"edge", BrowserEdge},
		{"msedge", BrowserEdge},
	}
	for _, tc := range testCases {
		got, err := ParseBrowserKind(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseBrowserKind("safari")
	assert.Error(t, err)
}

func TestDriverSupports(t *testing.T) {
	assert.True(t, DriverPlaywright.Supports(BrowserFirefox))
	assert.True(t, DriverWebDriver.Supports(BrowserEdge))
	assert.True(t, DriverCDP.Supports(BrowserChrome))
	assert.True(t, DriverCDP.Supports(BrowserEdge))
	assert.False(t, DriverCDP.Supports(BrowserFirefox))

	d, err := ParseDriverKind("selenium")
	require.NoError(t, err)
	assert.Equal(t, DriverWebDriver, d)

	_, err = ParseDriverKind("puppeteer")
	assert.Error(t, err)
}

func TestOutcomeFirst(t *testing.T) {
	o := Outcome[string]{Kind: Found, Elements: []string{"a", "b"}}
	first, ok := o.First()
	require.True(t, ok)
	assert.Equal(t, "a", first)

	o = Outcome[string]{Kind: TimedOut, Elements: []string{"a"}}
	_, ok = o.First()
	assert.False(t, ok)
	assert.Equal(t, "timed_out", o.Kind.String())
}

func TestElementStateClickable(t *testing.T) {
	s := ElementState{Attached: true, Visible: true, Enabled: true}
	assert.True(t, s.Clickable())

	s.Obscured = true
	assert.False(t, s.Clickable())
}
