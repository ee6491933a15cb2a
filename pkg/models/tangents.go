package models

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// ComputeTangents derives per-vertex tangents from positions and UVs for
// tangent-space normal mapping. Normals must already be set. Triangles with
// zero UV area contribute nothing; vertices left without a tangent get an
// arbitrary one perpendicular to their normal.
func (m *Mesh) ComputeTangents() {
	for i := range m.Vertices {
		m.Vertices[i].Tangent = math3d.Vec3{}
	}

	for i := range m.TriangleCount() {
		i0, i1, i2 := m.Triangle(i)
		v0, v1, v2 := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		du1, dv1 := v1.UV.X-v0.UV.X, v1.UV.Y-v0.UV.Y
		du2, dv2 := v2.UV.X-v0.UV.X, v2.UV.Y-v0.UV.Y

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			continue
		}
		r := 1 / denom
		t := e1.Scale(dv2 * r).Sub(e2.Scale(dv1 * r))

		m.Vertices[i0].Tangent = m.Vertices[i0].Tangent.Add(t)
		m.Vertices[i1].Tangent = m.Vertices[i1].Tangent.Add(t)
		m.Vertices[i2].Tangent = m.Vertices[i2].Tangent.Add(t)
	}

	// Gram-Schmidt against the normal.
	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := m.Vertices[i].Tangent
		t = t.Sub(n.Scale(n.Dot(t)))
		if t.LenSq() < 1e-8 {
			if math.Abs(n.X) < 0.9 {
				t = math3d.V3(1, 0, 0).Sub(n.Scale(n.X))
			} else {
				t = math3d.V3(0, 1, 0).Sub(n.Scale(n.Y))
			}
		}
		m.Vertices[i].Tangent = t.Normalize()
	}
}
