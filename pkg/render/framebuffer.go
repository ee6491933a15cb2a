// Package render implements a CPU triangle rasterizer: vertex transform,
// edge-function coverage with a top-left fill rule, depth testing,
// perspective-correct attribute interpolation and per-pixel shading.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// ErrUnsupportedImageFormat is returned by Save for unknown file extensions.
var ErrUnsupportedImageFormat = errors.New("unsupported image format")

// Framebuffer is the color target: row-major 8-bit pixels with (0, 0) at
// the top-left.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []Color
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// Resize reallocates the pixels if the dimensions changed.
func (fb *Framebuffer) Resize(width, height int) {
	if width == fb.Width && height == fb.Height {
		return
	}
	fb.Width, fb.Height = width, height
	fb.Pixels = make([]Color, width*height)
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c Color) {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	fb.Pixels[0] = c
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return Color{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// Packed returns the pixels as 0x00RRGGBB words, row-major.
func (fb *Framebuffer) Packed() []uint32 {
	out := make([]uint32, len(fb.Pixels))
	for i, c := range fb.Pixels {
		out[i] = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	}
	return out
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, fb.ToImage())
}

// SaveBMP saves the framebuffer as a 24-bit BMP file.
func (fb *Framebuffer) SaveBMP(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return bmp.Encode(f, fb.ToImage())
}

// Save writes the framebuffer in the format named by the file extension,
// .bmp or .png.
func (fb *Framebuffer) Save(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".bmp":
		return fb.SaveBMP(path)
	case ".png":
		return fb.SavePNG(path)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedImageFormat, ext)
	}
}
