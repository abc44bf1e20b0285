// Package colorutil provides shared color utilities for the floorplan mapper.
package colorutil

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned when a color string cannot be decoded.
var ErrInvalidColor = errors.New("invalid color")

// Common overlay colors used throughout the application.
var (
	Black = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Blue  = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
	Red   = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

	// Coral is the fallback room color when a palette entry cannot be decoded.
	Coral = color.NRGBA{R: 0xFF, G: 0x6F, B: 0x61, A: 255}
)

// ParseHex decodes a 6-hex-digit color, with or without a leading '#'.
func ParseHex(hex string) (colorful.Color, error) {
	s := strings.TrimSpace(hex)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 7 {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	return c, nil
}

// WithAlpha decodes hex and composes it with alpha, clamped to [0,1].
func WithAlpha(hex string, alpha float64) (color.NRGBA, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alphaByte(alpha)}, nil
}

// MustWithAlpha is WithAlpha with a fallback color for undecodable input.
func MustWithAlpha(hex string, alpha float64, fallback color.NRGBA) color.NRGBA {
	c, err := WithAlpha(hex, alpha)
	if err != nil {
		fallback.A = alphaByte(alpha)
		return fallback
	}
	return c
}

// RGBAString formats hex with alpha as a CSS rgba() string, e.g.
// "rgba(74, 144, 226, 0.3)".
func RGBAString(hex string, alpha float64) (string, error) {
	c, err := WithAlpha(hex, alpha)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, clamp01(alpha)), nil
}

// Format renders c as a CSS rgba() string.
func Format(c color.NRGBA) string {
	a := math.Round(float64(c.A)/255*100) / 100
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, a)
}

// Parse decodes either a hex color ("#4A90E2") or a CSS rgba()/rgb() string.
func Parse(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "rgba("):
		var r, g, b int
		var a float64
		if _, err := fmt.Sscanf(strings.ReplaceAll(lower, " ", ""), "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return color.NRGBA{R: byteOf(r), G: byteOf(g), B: byteOf(b), A: alphaByte(a)}, nil
	case strings.HasPrefix(lower, "rgb("):
		var r, g, b int
		if _, err := fmt.Sscanf(strings.ReplaceAll(lower, " ", ""), "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return color.NRGBA{R: byteOf(r), G: byteOf(g), B: byteOf(b), A: 255}, nil
	default:
		return WithAlpha(s, 1)
	}
}

// Lerp blends from a (t=0) to b (t=1) in RGB space, interpolating alpha linearly.
func Lerp(a, b color.NRGBA, t float64) color.NRGBA {
	t = clamp01(t)
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	alpha := float64(a.A) + (float64(b.A)-float64(a.A))*t
	return color.NRGBA{R: r, G: g, B: bl, A: uint8(math.Round(alpha))}
}

func alphaByte(alpha float64) uint8 {
	return uint8(math.Round(clamp01(alpha) * 255))
}

func byteOf(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
