package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	require.NotEmpty(t, names)
	assert.Contains(t, names, DefaultTheme)
	assert.IsNonDecreasing(t, names)

	for _, name := range names {
		_, ok := GetPalette(name)
		assert.True(t, ok, name)
	}

	_, ok := GetPalette("does-not-exist")
	assert.False(t, ok)
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() {
		p, _ := GetPalette(DefaultTheme)
		SetTheme(p)
	})

	p, ok := GetPalette("gruvbox")
	require.True(t, ok)
	SetTheme(p)

	assert.Equal(t, p, CurrentPalette)

	c := TagColor("golang")
	assert.Equal(t, c, TagColor("golang"), "tag colors are stable")
	assert.Contains(t, []any{p.Primary, p.Secondary, p.Success, p.Warning, p.Error}, any(c))
}

func TestGlamourStyle_UsesPalette(t *testing.T) {
	cfg := GlamourStyle()
	require.NotNil(t, cfg.Link.Color)
	assert.Equal(t, string(CurrentPalette.Secondary), *cfg.Link.Color)
}
