package app

import (
	"image/color"

	"floorplan-mapper/internal/config"
	"floorplan-mapper/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

var fallbackAccent = color.NRGBA{R: 0x4A, G: 0x90, B: 0xE2, A: 0xFF}

// FloorplanTheme tints the default theme with the accent of the room palette,
// so widgets share the color of freshly drawn rooms.
type FloorplanTheme struct {
	accent    color.NRGBA
	selection color.NRGBA
}

var _ fyne.Theme = (*FloorplanTheme)(nil)

// NewFloorplanTheme builds the theme from the palette's default room color.
// A malformed color falls back to a neutral blue.
func NewFloorplanTheme(p config.Palette) *FloorplanTheme {
	accent := colorutil.MustWithAlpha(p.Default, 1, fallbackAccent)
	selection := accent
	selection.A = 0x40
	return &FloorplanTheme{accent: accent, selection: selection}
}

func (t *FloorplanTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return t.accent
	case theme.ColorNameSelection:
		return t.selection
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *FloorplanTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *FloorplanTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *FloorplanTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
