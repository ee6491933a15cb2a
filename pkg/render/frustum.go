package render

import (
	"github.com/taigrr/prism/pkg/math3d"
)

// Plane is the set of points p with Normal·p + D = 0. Points with a
// positive distance are on the inner side.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to point.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the view volume as six inward-facing planes, ordered left,
// right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustumFromMatrix extracts the frustum of a view-projection matrix
// (Gribb/Hartmann). The projection maps depth to [0, 1], so the near
// plane is clip z >= 0 rather than z >= -w.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	// row(i) is row i of the column-major matrix as (x, y, z, w).
	row := func(i int) [4]float64 {
		return [4]float64{m[i], m[4+i], m[8+i], m[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	combos := [6][4]float64{}
	for k := range 4 {
		combos[0][k] = r3[k] + r0[k] // left
		combos[1][k] = r3[k] - r0[k] // right
		combos[2][k] = r3[k] + r1[k] // bottom
		combos[3][k] = r3[k] - r1[k] // top
		combos[4][k] = r2[k]         // near
		combos[5][k] = r3[k] - r2[k] // far
	}

	var f Frustum
	for i, c := range combos {
		f.Planes[i] = Plane{Normal: math3d.V3(c[0], c[1], c[2]), D: c[3]}
		f.Planes[i].Normalize()
	}
	return f
}

// Frustum returns the camera's current view volume.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectAABB reports whether any part of box may be visible. For each
// plane only the corner furthest along the normal is tested; if that one
// is outside, the whole box is. The test is conservative: a box near a
// frustum corner can pass without being visible.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, pl := range f.Planes {
		far := box.Min
		if pl.Normal.X >= 0 {
			far.X = box.Max.X
		}
		if pl.Normal.Y >= 0 {
			far.Y = box.Max.Y
		}
		if pl.Normal.Z >= 0 {
			far.Z = box.Max.Z
		}
		if pl.DistanceToPoint(far) < 0 {
			return false
		}
	}
	return true
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max corners.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the midpoint of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// corner returns corner i of the box; bits 0, 1 and 2 of i pick the max
// side on X, Y and Z.
func (b AABB) corner(i int) math3d.Vec3 {
	c := b.Min
	if i&1 != 0 {
		c.X = b.Max.X
	}
	if i&2 != 0 {
		c.Y = b.Max.Y
	}
	if i&4 != 0 {
		c.Z = b.Max.Z
	}
	return c
}

// Transform returns the box bounding all eight corners of b after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	p := m.MulVec3(b.corner(0))
	out := AABB{Min: p, Max: p}
	for i := 1; i < 8; i++ {
		p = m.MulVec3(b.corner(i))
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}
