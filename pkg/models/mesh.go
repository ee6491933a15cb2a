// Package models provides the geometry the rasterizer draws: vertices,
// indexed meshes with their world transform, and loaders that build them.
package models

import (
	"errors"
	"fmt"
	"image"

	"github.com/taigrr/prism/pkg/math3d"
)

var (
	// ErrUnsupportedTopology is returned for a topology the pipeline cannot draw.
	ErrUnsupportedTopology = errors.New("unsupported topology")
	// ErrIndexOutOfRange is returned when an index refers past the vertex list.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Vertex holds all per-vertex attributes in model space.
type Vertex struct {
	Position math3d.Vec3
	Color    math3d.ColorRGB
	UV       math3d.Vec2
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
}

// Material carries the images a model file ships with. The renderer turns
// them into samplers.
type Material struct {
	Name       string
	BaseColor  [4]float64 // RGBA in 0-1 range
	DiffuseMap image.Image
	NormalMap  image.Image
}

// HasTexture reports whether the material has a diffuse image.
func (m Material) HasTexture() bool {
	return m.DiffuseMap != nil
}

// Mesh is an indexed triangle mesh with a scale/rotation/translation
// world transform.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Topology Topology
	Material Material

	ScaleMatrix       math3d.Mat4
	RotationMatrix    math3d.Mat4
	TranslationMatrix math3d.Mat4

	// Model-space bounding box, see CalculateBounds.
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates a mesh with identity transforms.
func NewMesh(name string, vertices []Vertex, indices []uint32, topology Topology) *Mesh {
	m := &Mesh{
		Name:              name,
		Vertices:          vertices,
		Indices:           indices,
		Topology:          topology,
		ScaleMatrix:       math3d.Identity(),
		RotationMatrix:    math3d.Identity(),
		TranslationMatrix: math3d.Identity(),
	}
	m.CalculateBounds()
	return m
}

// WorldMatrix returns the model-to-world transform: scale first, then
// rotation, then translation.
func (m *Mesh) WorldMatrix() math3d.Mat4 {
	return m.TranslationMatrix.Mul(m.RotationMatrix).Mul(m.ScaleMatrix)
}

// SetRotationY replaces the rotation with a yaw of angle radians.
func (m *Mesh) SetRotationY(angle float64) {
	m.RotationMatrix = math3d.RotateY(angle)
}

// SetTranslation replaces the translation.
func (m *Mesh) SetTranslation(v math3d.Vec3) {
	m.TranslationMatrix = math3d.Translate(v)
}

// SetScale replaces the scale.
func (m *Mesh) SetScale(v math3d.Vec3) {
	m.ScaleMatrix = math3d.Scale(v)
}

// Validate checks the topology and that every index refers to a vertex.
func (m *Mesh) Validate() error {
	if !m.Topology.Valid() {
		return fmt.Errorf("mesh %q: %w: %v", m.Name, ErrUnsupportedTopology, m.Topology)
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("mesh %q: %w: index %d at position %d, %d vertices",
				m.Name, ErrIndexOutOfRange, idx, i, n)
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Bounds returns the model-space axis-aligned bounding box.
func (m *Mesh) Bounds() (lo, hi math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles the index list describes,
// degenerate ones included.
func (m *Mesh) TriangleCount() int {
	return m.Topology.TriangleCount(len(m.Indices))
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c uint32) {
	return m.Topology.Triangle(m.Indices, i)
}

// CalculateSmoothNormals replaces every normal with the area-weighted
// average of the faces sharing the vertex.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}

	for i := range m.TriangleCount() {
		a, b, c := m.Triangle(i)
		v0 := m.Vertices[a].Position
		v1 := m.Vertices[b].Position
		v2 := m.Vertices[c].Position

		// Points toward a viewer that sees the triangle clockwise.
		n := v1.Sub(v0).Cross(v2.Sub(v0))

		m.Vertices[a].Normal = m.Vertices[a].Normal.Add(n)
		m.Vertices[b].Normal = m.Vertices[b].Normal.Add(n)
		m.Vertices[c].Normal = m.Vertices[c].Normal.Add(n)
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Clone creates a deep copy of the geometry. Images are shared.
func (m *Mesh) Clone() *Mesh {
	clone := *m
	clone.Vertices = make([]Vertex, len(m.Vertices))
	clone.Indices = make([]uint32, len(m.Indices))
	copy(clone.Vertices, m.Vertices)
	copy(clone.Indices, m.Indices)
	return &clone
}
