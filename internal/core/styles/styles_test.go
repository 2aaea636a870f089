package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	assert.Contains(t, names, DefaultTheme)
	assert.IsIncreasing(t, names)
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	p, ok := GetPalette("gruvbox")
	require.True(t, ok)
	SetTheme(p)

	assert.Equal(t, p, CurrentPalette)
	assert.Equal(t, p.Error, TextErrorStyle.GetForeground())
	assert.Equal(t, p.Secondary, LevelStyle("info").GetForeground())
	assert.True(t, LevelStyle("error").GetBold())
	assert.Equal(t, p.Warning, LevelStyle("warning").GetForeground())
}

func TestGetPalette_Unknown(t *testing.T) {
	_, ok := GetPalette("solarized-neon")
	assert.False(t, ok)
}
