package render

import "math"

// DepthBuffer holds one depth value per pixel. Smaller is nearer. Reset
// fills it with +Inf so the first fragment at any pixel always passes.
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64
}

// NewDepthBuffer creates a depth buffer already reset to +Inf.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	d.Reset()
	return d
}

// Resize reallocates the buffer if the dimensions changed.
func (d *DepthBuffer) Resize(width, height int) {
	if width == d.Width && height == d.Height {
		return
	}
	d.Width, d.Height = width, height
	d.Values = make([]float64, width*height)
	d.Reset()
}

// Reset sets every value to +Inf.
func (d *DepthBuffer) Reset() {
	n := len(d.Values)
	if n == 0 {
		return
	}
	d.Values[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(d.Values[i:], d.Values[:i])
	}
}

// At returns the depth at (x, y), or +Inf outside the buffer.
func (d *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return math.Inf(1)
	}
	return d.Values[y*d.Width+x]
}

// testAndSet stores z at index i if it is strictly nearer than the stored
// value. Equal depths keep the earlier fragment.
func (d *DepthBuffer) testAndSet(i int, z float64) bool {
	if z < d.Values[i] {
		d.Values[i] = z
		return true
	}
	return false
}
