package app

import (
	"image/color"
	"testing"

	"floorplan-mapper/internal/config"

	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
)

func TestFloorplanThemeUsesPaletteAccent(t *testing.T) {
	th := NewFloorplanTheme(config.Palette{Default: "#FF6F61"})
	assert.Equal(t, color.NRGBA{R: 0xFF, G: 0x6F, B: 0x61, A: 0xFF}, th.Color(theme.ColorNamePrimary, theme.VariantLight))
	assert.Equal(t, color.NRGBA{R: 0xFF, G: 0x6F, B: 0x61, A: 0x40}, th.Color(theme.ColorNameSelection, theme.VariantDark))
	assert.Equal(t, theme.DefaultTheme().Color(theme.ColorNameForeground, theme.VariantDark),
		th.Color(theme.ColorNameForeground, theme.VariantDark))
}

func TestFloorplanThemeFallsBack(t *testing.T) {
	th := NewFloorplanTheme(config.Palette{Default: "not-a-color"})
	assert.Equal(t, fallbackAccent, th.Color(theme.ColorNamePrimary, theme.VariantLight))
}
