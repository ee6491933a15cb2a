package render

import (
	"image/color"

	"github.com/taigrr/prism/pkg/math3d"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorGray  = color.RGBA{99, 99, 99, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// ToColor clamps a floating point color and packs it into 8 bits per channel.
func ToColor(c math3d.ColorRGB) Color {
	r, g, b := c.Bytes()
	return Color{R: r, G: g, B: b, A: 255}
}

// FromColor widens an 8-bit color to floating point, dropping alpha.
func FromColor(c Color) math3d.ColorRGB {
	return math3d.ColorFromBytes(c.R, c.G, c.B)
}
