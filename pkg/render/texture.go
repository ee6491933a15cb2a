package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // tile
	WrapClamp                  // stretch the edge texels
)

// FilterMode selects how a sample is reconstructed from texels.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterBilinear
)

// Texture is a row-major RGBA image sampled with UVs. V=0 is the top row.
// It implements Sampler and is safe for concurrent reads.
type Texture struct {
	Width  int
	Height int
	Pixels []Color

	WrapU, WrapV WrapMode
	FilterMode   FilterMode
}

// NewTexture creates a transparent black texture.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture decodes a PNG or JPEG file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage copies img into a new texture.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != 4*b.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(rgba, rgba.Rect, img, b.Min, xdraw.Src)
	}

	tex := NewTexture(b.Dx(), b.Dy())
	for i := range tex.Pixels {
		p := rgba.Pix[i*4 : i*4+4 : i*4+4]
		tex.Pixels[i] = Color{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
	return tex
}

// NewCheckerTexture creates a checkerboard of size-pixel squares, c1 in the
// top-left square.
func NewCheckerTexture(width, height, size int, c1, c2 Color) *Texture {
	size = max(size, 1)
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			c := c1
			if (x/size+y/size)%2 == 1 {
				c = c2
			}
			tex.Pixels[y*width+x] = c
		}
	}
	return tex
}

// SetPixel sets the texel at (x, y); out-of-range writes are ignored.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the texel at (x, y), or the zero color out of range.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample implements Sampler.
func (t *Texture) Sample(u, v float64) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	fx, fy := u*float64(t.Width), v*float64(t.Height)

	if t.FilterMode != FilterBilinear {
		x := wrapIndex(int(math.Floor(fx)), t.Width, t.WrapU)
		y := wrapIndex(int(math.Floor(fy)), t.Height, t.WrapV)
		return t.Pixels[y*t.Width+x]
	}

	// Texel centers sit at half-integer coordinates.
	fx -= 0.5
	fy -= 0.5
	x0f, y0f := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0f, fy-y0f
	x0, y0 := int(x0f), int(y0f)

	xa, xb := wrapIndex(x0, t.Width, t.WrapU), wrapIndex(x0+1, t.Width, t.WrapU)
	ya, yb := wrapIndex(y0, t.Height, t.WrapV), wrapIndex(y0+1, t.Height, t.WrapV)
	rowA, rowB := t.Pixels[ya*t.Width:], t.Pixels[yb*t.Width:]

	var out [4]uint8
	for ch := range 4 {
		top := lerp(channel(rowA[xa], ch), channel(rowA[xb], ch), tx)
		bot := lerp(channel(rowB[xa], ch), channel(rowB[xb], ch), tx)
		out[ch] = uint8(math.Round(lerp(top, bot, ty)))
	}
	return Color{R: out[0], G: out[1], B: out[2], A: out[3]}
}

// wrapIndex maps texel index i into [0, n) under mode.
func wrapIndex(i, n int, mode WrapMode) int {
	if mode == WrapClamp {
		return min(max(i, 0), n-1)
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func channel(c Color, ch int) float64 {
	switch ch {
	case 0:
		return float64(c.R)
	case 1:
		return float64(c.G)
	case 2:
		return float64(c.B)
	}
	return float64(c.A)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
