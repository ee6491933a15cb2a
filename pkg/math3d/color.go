package math3d

import "math"

// ColorRGB is a linear floating point color. Components are nominally in
// [0, 1] but may exceed 1 during lighting.
type ColorRGB struct {
	R, G, B float64
}

// RGB creates a new ColorRGB.
func RGB(r, g, b float64) ColorRGB {
	return ColorRGB{r, g, b}
}

// Gray returns a color with all three channels set to v.
func Gray(v float64) ColorRGB {
	return ColorRGB{v, v, v}
}

// Add returns the component-wise sum.
func (c ColorRGB) Add(o ColorRGB) ColorRGB {
	return ColorRGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Scale multiplies every channel by s.
func (c ColorRGB) Scale(s float64) ColorRGB {
	return ColorRGB{c.R * s, c.G * s, c.B * s}
}

// MaxToOne rescales the color so its largest channel is at most 1,
// preserving hue. Colors already in range are returned unchanged.
func (c ColorRGB) MaxToOne() ColorRGB {
	m := math.Max(c.R, math.Max(c.G, c.B))
	if m <= 1 {
		return c
	}
	return c.Scale(1 / m)
}

// Clamp limits every channel to [0, 1].
func (c ColorRGB) Clamp() ColorRGB {
	return ColorRGB{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// Bytes converts the color to 8-bit channels after clamping.
func (c ColorRGB) Bytes() (r, g, b uint8) {
	c = c.Clamp()
	return uint8(c.R*255 + 0.5), uint8(c.G*255 + 0.5), uint8(c.B*255 + 0.5)
}

// ColorFromBytes converts 8-bit channels into a ColorRGB.
func ColorFromBytes(r, g, b uint8) ColorRGB {
	return ColorRGB{float64(r) / 255, float64(g) / 255, float64(b) / 255}
}

func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
