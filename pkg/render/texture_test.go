package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/prism/pkg/models"
)

var (
	red   = RGB(255, 0, 0)
	green = RGB(0, 255, 0)
	blue  = RGB(0, 0, 255)
)

// newQuadTexture returns a 2x2 texture: red, green on the top row and
// blue, white on the bottom.
func newQuadTexture() *Texture {
	tex := NewTexture(2, 2)
	tex.SetPixel(0, 0, red)
	tex.SetPixel(1, 0, green)
	tex.SetPixel(0, 1, blue)
	tex.SetPixel(1, 1, ColorWhite)
	return tex
}

func TestTextureSampleNearest(t *testing.T) {
	tests := []struct {
		name string
		wrap WrapMode
		u, v float64
		want Color
	}{
		{"top left", WrapRepeat, 0.25, 0.25, red},
		{"top right", WrapRepeat, 0.75, 0.25, green},
		{"v zero is top row", WrapRepeat, 0.25, 0, red},
		{"bottom left", WrapRepeat, 0.25, 0.75, blue},
		{"repeat u", WrapRepeat, 1.25, 0.25, red},
		{"repeat negative v", WrapRepeat, 0.75, -0.25, ColorWhite},
		{"clamp u", WrapClamp, 1.5, 0.25, green},
		{"clamp exact one", WrapClamp, 1, 1, ColorWhite},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tex := newQuadTexture()
			tex.WrapU, tex.WrapV = tc.wrap, tc.wrap
			if got := tex.Sample(tc.u, tc.v); got != tc.want {
				t.Errorf("Sample(%v, %v) = %v, want %v", tc.u, tc.v, got, tc.want)
			}
		})
	}
}

func TestTextureSampleBilinear(t *testing.T) {
	tex := newQuadTexture()
	tex.FilterMode = FilterBilinear
	tex.WrapU, tex.WrapV = WrapClamp, WrapClamp

	got := tex.Sample(0.5, 0.5)
	for _, ch := range []uint8{got.R, got.G, got.B} {
		if ch < 120 || ch > 135 {
			t.Fatalf("center sample = %v, want an even mix", got)
		}
	}
	if got := tex.Sample(0.25, 0.25); got != red {
		t.Errorf("texel center = %v, want red", got)
	}
}

func TestTextureSampleEmpty(t *testing.T) {
	tex := NewTexture(0, 0)
	if got := tex.Sample(0.5, 0.5); got != (Color{}) {
		t.Errorf("Sample() = %v, want zero color", got)
	}
}

func TestCheckerTexture(t *testing.T) {
	tex := NewCheckerTexture(4, 4, 2, ColorWhite, ColorBlack)
	if tex.GetPixel(0, 0) != ColorWhite || tex.GetPixel(2, 0) != ColorBlack || tex.GetPixel(2, 2) != ColorWhite {
		t.Error("unexpected checker layout")
	}
}

func TestLoadTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(2, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	path := filepath.Join(t.TempDir(), "tex.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tex, err := LoadTexture(path)
	if err != nil {
		t.Fatalf("LoadTexture() error = %v", err)
	}
	if tex.Width != 3 || tex.Height != 2 {
		t.Fatalf("size = %dx%d", tex.Width, tex.Height)
	}
	if got := tex.GetPixel(2, 1); got != RGB(1, 2, 3) {
		t.Errorf("pixel = %v", got)
	}

	if _, err := LoadTexture(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMaterialFromModel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, green)

	mat := MaterialFromModel(models.Material{DiffuseMap: img})
	if mat.Diffuse == nil || mat.Normal != nil {
		t.Fatalf("material = %+v", mat)
	}
	if got := mat.Diffuse.Sample(0.3, 0.9); got != green {
		t.Errorf("Sample() = %v, want green", got)
	}
	if got := SolidColor(blue).Sample(5, -5); got != blue {
		t.Errorf("SolidColor.Sample() = %v", got)
	}
}

func BenchmarkTextureSampleBilinear(b *testing.B) {
	tex := NewCheckerTexture(256, 256, 16, ColorWhite, ColorGray)
	tex.FilterMode = FilterBilinear
	for b.Loop() {
		tex.Sample(0.37, 0.61)
	}
}
