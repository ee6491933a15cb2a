package models

import "github.com/taigrr/prism/pkg/math3d"

// NewTriangleMesh returns a single triangle with red, green and blue
// corners, facing a camera on the -Z axis.
func NewTriangleMesh() *Mesh {
	n := math3d.V3(0, 0, -1)
	t := math3d.V3(1, 0, 0)
	vertices := []Vertex{
		{Position: math3d.V3(0, 2, 0), Color: math3d.RGB(1, 0, 0), UV: math3d.V2(0.5, 0), Normal: n, Tangent: t},
		{Position: math3d.V3(1, 0, 0), Color: math3d.RGB(0, 1, 0), UV: math3d.V2(1, 1), Normal: n, Tangent: t},
		{Position: math3d.V3(-1, 0, 0), Color: math3d.RGB(0, 0, 1), UV: math3d.V2(0, 1), Normal: n, Tangent: t},
	}
	return NewMesh("triangle", vertices, []uint32{0, 1, 2}, TriangleList)
}

// NewQuadMesh returns a white 2x2 quad in the z=0 plane, facing -Z, built
// with the given topology.
func NewQuadMesh(topology Topology) *Mesh {
	vertices := quadVertices(math3d.V3(0, 0, -1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0))
	var indices []uint32
	if topology == TriangleStrip {
		indices = []uint32{0, 1, 2, 3}
	} else {
		indices = []uint32{0, 1, 2, 2, 1, 3}
	}
	return NewMesh("quad", vertices, indices, topology)
}

// NewCubeMesh returns a white cube spanning [-1, 1] on every axis with
// per-face normals, tangents and UVs.
func NewCubeMesh() *Mesh {
	faces := []struct{ normal, up math3d.Vec3 }{
		{math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(0, 0, 1)},
		{math3d.V3(0, -1, 0), math3d.V3(0, 0, -1)},
	}

	vertices := make([]Vertex, 0, len(faces)*4)
	indices := make([]uint32, 0, len(faces)*6)
	for _, f := range faces {
		// Right as seen by a viewer looking at the face from outside.
		right := f.up.Cross(f.normal.Negate())
		base := uint32(len(vertices))
		for _, v := range quadVertices(f.normal, right, f.up) {
			v.Position = v.Position.Add(f.normal)
			vertices = append(vertices, v)
		}
		indices = append(indices, base, base+1, base+2, base+2, base+1, base+3)
	}
	return NewMesh("cube", vertices, indices, TriangleList)
}

// quadVertices lays out top-left, top-right, bottom-left, bottom-right
// corners of a unit-radius quad spanned by right and up.
func quadVertices(normal, right, up math3d.Vec3) []Vertex {
	corner := func(x, y, u, v float64) Vertex {
		return Vertex{
			Position: right.Scale(x).Add(up.Scale(y)),
			Color:    math3d.Gray(1),
			UV:       math3d.V2(u, v),
			Normal:   normal,
			Tangent:  right,
		}
	}
	return []Vertex{
		corner(-1, 1, 0, 0),
		corner(1, 1, 1, 0),
		corner(-1, -1, 0, 1),
		corner(1, -1, 1, 1),
	}
}
