package engine

import (
	"image"
	"image/color"
	"image/draw"
)

// glyphs holds 3x5 bitmaps, five rows of three bits, for label text.
var glyphs = map[rune][5]uint8{
	'0': {0b111, 0b101, 0b101, 0b101, 0b111},
	'1': {0b010, 0b110, 0b010, 0b010, 0b111},
	'2': {0b111, 0b001, 0b111, 0b100, 0b111},
	'3': {0b111, 0b001, 0b111, 0b001, 0b111},
	'4': {0b101, 0b101, 0b111, 0b001, 0b001},
	'5': {0b111, 0b100, 0b111, 0b001, 0b111},
	'6': {0b111, 0b100, 0b111, 0b101, 0b111},
	'7': {0b111, 0b001, 0b001, 0b001, 0b001},
	'8': {0b111, 0b101, 0b111, 0b101, 0b111},
	'9': {0b111, 0b101, 0b111, 0b001, 0b111},
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'J': {0b001, 0b001, 0b001, 0b101, 0b010},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	'_': {0b000, 0b000, 0b000, 0b000, 0b111},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	'/': {0b001, 0b001, 0b010, 0b100, 0b100},
	'#': {0b101, 0b111, 0b101, 0b111, 0b101},
	' ': {},
}

// glyph returns the bitmap for ch; lowercase maps to uppercase and
// unsupported runes are blank.
func glyph(ch rune) [5]uint8 {
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	return glyphs[ch]
}

// labelWidth returns the pixel width of text at the given scale.
func labelWidth(text string, scale int) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	return n*3*scale + (n-1)*scale
}

// drawLabel paints text with its top-left corner at (x, y). Each font pixel
// becomes a scale x scale block.
func drawLabel(dst *image.RGBA, text string, x, y, scale int, col color.Color) {
	if scale < 1 {
		scale = 1
	}
	src := image.NewUniform(col)
	for i, ch := range []rune(text) {
		pattern := glyph(ch)
		charX := x + i*4*scale
		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if pattern[row]&(1<<(2-c)) == 0 {
					continue
				}
				block := image.Rect(charX+c*scale, y+row*scale, charX+(c+1)*scale, y+(row+1)*scale)
				draw.Draw(dst, block.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
			}
		}
	}
}

// drawCenteredLabel paints text centred on (cx, cy).
func drawCenteredLabel(dst *image.RGBA, text string, cx, cy, scale int, col color.Color) {
	drawLabel(dst, text, cx-labelWidth(text, scale)/2, cy-5*scale/2, scale, col)
}
