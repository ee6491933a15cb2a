package render

import (
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

func TestPlaneDistanceToPoint(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.DistanceToPoint(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if length := plane.Normal.Len(); math.Abs(length-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", length)
	}
	if math.Abs(plane.Normal.Y-0.6) > 1e-9 || math.Abs(plane.Normal.Z-0.8) > 1e-9 {
		t.Errorf("normal = %v, want (0, 0.6, 0.8)", plane.Normal)
	}
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	t.Run("translation", func(t *testing.T) {
		got := box.Transform(math3d.Translate(math3d.V3(10, 20, 30)))
		if got.Min != math3d.V3(9, 19, 29) || got.Max != math3d.V3(11, 21, 31) {
			t.Errorf("translated = %v", got)
		}
	})

	t.Run("rotation grows bounds", func(t *testing.T) {
		got := box.Transform(math3d.RotateY(math.Pi / 4))
		want := math.Sqrt2
		if math.Abs(got.Max.X-want) > 1e-9 || math.Abs(got.Max.Z-want) > 1e-9 {
			t.Errorf("rotated max = %v, want X and Z %v", got.Max, want)
		}
		if got.Center().Len() > 1e-9 {
			t.Errorf("rotated center = %v", got.Center())
		}
	})
}

func TestAABBCorners(t *testing.T) {
	box := NewAABB(math3d.V3(0, 1, 2), math3d.V3(3, 4, 5))
	onSide := func(v, lo, hi float64) bool { return v == lo || v == hi }
	seen := make(map[math3d.Vec3]bool)
	for i := range 8 {
		c := box.corner(i)
		if !onSide(c.X, box.Min.X, box.Max.X) || !onSide(c.Y, box.Min.Y, box.Max.Y) || !onSide(c.Z, box.Min.Z, box.Max.Z) {
			t.Fatalf("corner(%d) = %v is not a box corner", i, c)
		}
		seen[c] = true
	}
	if len(seen) != 8 {
		t.Errorf("got %d distinct corners, want 8", len(seen))
	}
}

func newTestCamera() *Camera {
	cam := NewCamera()
	cam.SetAspectRatio(1)
	return cam
}

func TestFrustumContainsPoint(t *testing.T) {
	f := newTestCamera().Frustum()

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected bool
	}{
		{"origin ahead", math3d.V3(0, 0, 0), true},
		{"just past near", math3d.V3(0, 0, -9.85), true},
		{"before near", math3d.V3(0, 0, -9.95), false},
		{"behind camera", math3d.V3(0, 0, -20), false},
		{"beyond far", math3d.V3(0, 0, 95), false},
		{"far left", math3d.V3(-50, 0, 0), false},
		{"far up", math3d.V3(0, 50, 0), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.ContainsPoint(tc.point); got != tc.expected {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, got, tc.expected)
			}
		})
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	f := newTestCamera().Frustum()

	tests := []struct {
		name     string
		box      AABB
		expected bool
	}{
		{"at target", NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)), true},
		{"straddles left plane", NewAABB(math3d.V3(-10, -1, -1), math3d.V3(-5, 1, 1)), true},
		{"fully left", NewAABB(math3d.V3(-30, -1, -1), math3d.V3(-20, 1, 1)), false},
		{"behind camera", NewAABB(math3d.V3(-1, -1, -30), math3d.V3(1, 1, -20)), false},
		{"beyond far", NewAABB(math3d.V3(-1, -1, 100), math3d.V3(1, 1, 110)), false},
		{"encloses camera", NewAABB(math3d.V3(-50, -50, -50), math3d.V3(50, 50, 50)), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.IntersectAABB(tc.box); got != tc.expected {
				t.Errorf("IntersectAABB(%v) = %v, want %v", tc.box, got, tc.expected)
			}
		})
	}
}

func TestFrustumWithRotatedCamera(t *testing.T) {
	cam := newTestCamera()
	cam.SetOrigin(math3d.V3(0, 0, 0))
	cam.SetRotation(0, math.Pi/2) // look down +X

	f := cam.Frustum()
	if !f.ContainsPoint(math3d.V3(10, 0, 0)) {
		t.Error("point on +X should be visible")
	}
	if f.ContainsPoint(math3d.V3(0, 0, 10)) {
		t.Error("point on +Z should be outside after turning")
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	f := newTestCamera().Frustum()
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	for b.Loop() {
		_ = f.IntersectAABB(box)
	}
}

func BenchmarkFrustumExtraction(b *testing.B) {
	m := newTestCamera().ViewProjectionMatrix()

	for b.Loop() {
		_ = NewFrustumFromMatrix(m)
	}
}

func BenchmarkAABBTransform(b *testing.B) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))
	m := math3d.Translate(math3d.V3(1, 2, 3)).Mul(math3d.RotateY(0.5))

	for b.Loop() {
		_ = box.Transform(m)
	}
}
