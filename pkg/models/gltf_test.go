package models

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/prism/pkg/math3d"
)

// writeGLB saves a single-primitive document built from the given data.
func writeGLB(t *testing.T, mode gltf.PrimitiveMode, positions [][3]float32, indices []uint32) string {
	t.Helper()

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, positions)
	prim := &gltf.Primitive{
		Mode:       mode,
		Attributes: map[string]int{gltf.POSITION: pos},
	}
	if indices != nil {
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, indices))
	}
	doc.Meshes = []*gltf.Mesh{{Name: "test", Primitives: []*gltf.Primitive{prim}}}

	path := filepath.Join(t.TempDir(), "test.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestLoadGLTFInvalidPath(t *testing.T) {
	_, err := LoadGLTF("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
	if !loader.ComputeTangents {
		t.Error("ComputeTangents should default to true")
	}
	if !loader.LoadTextures {
		t.Error("LoadTextures should default to true")
	}
}

func TestLoadGLTFTriangleList(t *testing.T) {
	// Counter-clockwise when seen from +Z in glTF's right-handed space.
	path := writeGLB(t, gltf.PrimitiveTriangles,
		[][3]float32{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}},
		[]uint32{0, 1, 2})

	mesh, err := LoadGLTF(path)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if mesh.Topology != TriangleList {
		t.Errorf("Topology = %v, want TriangleList", mesh.Topology)
	}
	if !slices.Equal(mesh.Indices, []uint32{0, 2, 1}) {
		t.Errorf("Indices = %v, want winding reversed", mesh.Indices)
	}
	if got := mesh.Vertices[1].Position; got != math3d.V3(1, 0, -1) {
		t.Errorf("Position = %v, want Z mirrored", got)
	}
	// The face was visible from +Z, which is now -Z.
	if n := mesh.Vertices[0].Normal; !vecNear(n, math3d.V3(0, 0, -1)) {
		t.Errorf("Normal = %v, want (0,0,-1)", n)
	}
	if c := mesh.Vertices[0].Color; c != math3d.Gray(1) {
		t.Errorf("Color = %v, want white", c)
	}
	if lo, hi := mesh.Bounds(); lo != math3d.V3(0, 0, -1) || hi != math3d.V3(1, 1, -1) {
		t.Errorf("Bounds = %v, %v", lo, hi)
	}
}

func TestLoadGLTFNonIndexed(t *testing.T) {
	path := writeGLB(t, gltf.PrimitiveTriangles,
		[][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}, {2, 1, 0}, {1, 2, 0}},
		nil)

	mesh, err := LoadGLTF(path)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if !slices.Equal(mesh.Indices, []uint32{0, 2, 1, 3, 5, 4}) {
		t.Errorf("Indices = %v", mesh.Indices)
	}
}

func TestLoadGLTFTriangleStrip(t *testing.T) {
	path := writeGLB(t, gltf.PrimitiveTriangleStrip,
		[][3]float32{{-1, 1, 0}, {-1, -1, 0}, {1, 1, 0}, {1, -1, 0}},
		[]uint32{0, 1, 2, 3})

	mesh, err := LoadGLTF(path)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if mesh.Topology != TriangleStrip {
		t.Fatalf("Topology = %v, want TriangleStrip", mesh.Topology)
	}
	if !slices.Equal(mesh.Indices, []uint32{0, 0, 1, 2, 3}) {
		t.Errorf("Indices = %v", mesh.Indices)
	}
	if mesh.TriangleCount() != 3 {
		t.Errorf("TriangleCount() = %d, want 3", mesh.TriangleCount())
	}
}

func TestFlipWinding(t *testing.T) {
	tests := []struct {
		name     string
		topology Topology
		in       []uint32
		want     []uint32
	}{
		{"list", TriangleList, []uint32{0, 1, 2, 3, 4, 5}, []uint32{0, 2, 1, 3, 5, 4}},
		{"strip", TriangleStrip, []uint32{0, 1, 2, 3}, []uint32{0, 0, 1, 2, 3}},
		{"empty strip", TriangleStrip, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flipWinding(tt.in, tt.topology); !slices.Equal(got, tt.want) {
				t.Errorf("flipWinding = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergePrimitives(t *testing.T) {
	list := primitive{vertices: make([]Vertex, 3), indices: []uint32{0, 1, 2}, topology: TriangleList}
	strip := primitive{vertices: make([]Vertex, 4), indices: []uint32{0, 1, 2, 3}, topology: TriangleStrip}

	mesh := NewMesh("merged", nil, nil, TriangleList)
	mergePrimitives(mesh, []primitive{list, strip})

	if mesh.Topology != TriangleList {
		t.Errorf("Topology = %v, want TriangleList", mesh.Topology)
	}
	want := []uint32{0, 1, 2, 3, 4, 5, 4, 6, 5}
	if !slices.Equal(mesh.Indices, want) {
		t.Errorf("Indices = %v, want %v", mesh.Indices, want)
	}
	if err := mesh.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}
