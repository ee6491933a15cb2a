package main

import (
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/prism/internal/config"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
)

func TestBuildSceneDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Width, cfg.Height = 64, 36

	r, err := buildScene(cfg, log.New(io.Discard))
	if err != nil {
		t.Fatalf("buildScene() error = %v", err)
	}
	if n := len(r.Meshes()); n != 1 {
		t.Fatalf("meshes = %d, want 1", n)
	}
	if r.Flags() != render.DefaultPipelineFlags() {
		t.Errorf("flags = %+v", r.Flags())
	}

	fb := r.RenderFrame()
	if fb.Width != 64 || fb.Height != 36 {
		t.Errorf("framebuffer = %dx%d", fb.Width, fb.Height)
	}
	if s := r.Stats(); s.FragmentsShaded == 0 {
		t.Errorf("stats = %+v, want fragments", s)
	}
	if got := fb.GetPixel(0, 0); got != render.RGB(99, 99, 99) {
		t.Errorf("clear color = %v", got)
	}
}

func TestBuildScenePrimitives(t *testing.T) {
	tests := []struct {
		primitive string
		topology  models.Topology
		triangles int
	}{
		{config.PrimitiveTriangle, models.TriangleList, 1},
		{config.PrimitiveQuad, models.TriangleList, 2},
		{config.PrimitiveStrip, models.TriangleStrip, 2},
		{config.PrimitiveCube, models.TriangleList, 12},
	}
	for _, tc := range tests {
		t.Run(tc.primitive, func(t *testing.T) {
			mesh, _, err := newMeshLoader().load(config.MeshConfig{Primitive: tc.primitive, Checker: true})
			if err != nil {
				t.Fatalf("load() error = %v", err)
			}
			if mesh.Topology != tc.topology || mesh.TriangleCount() != tc.triangles {
				t.Errorf("%v with %d triangles", mesh.Topology, mesh.TriangleCount())
			}
		})
	}

	if _, err := newPrimitive("teapot"); err == nil {
		t.Error("expected error for unknown primitive")
	}
}

func TestLoadMeshTransformAndTextures(t *testing.T) {
	dir := t.TempDir()
	texPath := filepath.Join(dir, "diffuse.png")
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	f, err := os.Create(texPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	scale := config.Vec3{2, 2, 2}
	mesh, mat, err := newMeshLoader().load(config.MeshConfig{
		Name:      "floor",
		Primitive: config.PrimitiveQuad,
		Position:  config.Vec3{1, 0, 3},
		Scale:     &scale,
		Yaw:       90,
		Diffuse:   texPath,
	})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if mesh.Name != "floor" {
		t.Errorf("Name = %q", mesh.Name)
	}
	if _, ok := mat.Diffuse.(*render.Texture); !ok {
		t.Errorf("Diffuse = %T, want *render.Texture", mat.Diffuse)
	}

	// (1, 0, 0) scaled to 2, turned a quarter toward -Z, moved by (1, 0, 3).
	got := mesh.WorldMatrix().MulVec3(math3d.V3(1, 0, 0))
	if want := math3d.V3(1, 0, 1); got.Sub(want).Len() > 1e-9 {
		t.Errorf("world point = %v, want %v", got, want)
	}

	if _, _, err := newMeshLoader().load(config.MeshConfig{Primitive: config.PrimitiveQuad, Normal: filepath.Join(dir, "missing.png")}); err == nil {
		t.Error("expected error for missing texture")
	}
}

func TestMeshLoaderSharesFiles(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {4, 0, 0}, {0, 4, 0}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{{
		Mode:       gltf.PrimitiveTriangles,
		Attributes: map[string]int{gltf.POSITION: pos},
		Indices:    gltf.Index(idx),
	}}}}
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatal(err)
	}

	l := newMeshLoader()
	a, _, err := l.load(config.MeshConfig{Path: path, Position: config.Vec3{-2, 0, 0}})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	b, _, err := l.load(config.MeshConfig{Path: path, Position: config.Vec3{2, 0, 0}})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if len(l.files) != 1 {
		t.Errorf("parsed %d files, want 1", len(l.files))
	}
	if a == b || &a.Vertices[0] == &b.Vertices[0] {
		t.Fatal("meshes share storage")
	}
	if a.WorldMatrix().Translation() == b.WorldMatrix().Translation() {
		t.Error("transforms are not independent")
	}

	// The cached geometry is already fitted.
	_, hi := b.Bounds()
	if math.Abs(max(hi.X, hi.Y)-1) > 1e-6 {
		t.Errorf("fitted bounds max = %v, want 1", hi)
	}
}

func TestFitMesh(t *testing.T) {
	mesh := models.NewCubeMesh()
	for i := range mesh.Vertices {
		mesh.Vertices[i].Position = mesh.Vertices[i].Position.Scale(5).Add(math3d.V3(10, 0, 0))
	}

	fitMesh(mesh)
	lo, hi := mesh.Bounds()
	if lo.Sub(math3d.V3(-1, -1, -1)).Len() > 1e-9 || hi.Sub(math3d.V3(1, 1, 1)).Len() > 1e-9 {
		t.Errorf("bounds = %v, %v", lo, hi)
	}
}

func TestNewCamera(t *testing.T) {
	cc := config.Default().Camera
	target := config.Vec3{0, 0, 0}
	cc.Origin = config.Vec3{10, 0, 0}
	cc.LookAt = &target

	cam := newCamera(cc)
	if f := cam.Forward(); f.Sub(math3d.V3(-1, 0, 0)).Len() > 1e-9 {
		t.Errorf("Forward() = %v", f)
	}
	if math.Abs(cam.FOV-math.Pi/3) > 1e-12 {
		t.Errorf("FOV = %v", cam.FOV)
	}
}

func TestFramePath(t *testing.T) {
	tests := []struct {
		path  string
		frame int
		want  string
	}{
		{"out.bmp", 0, "out_0000.bmp"},
		{"dir/frame.png", 12, "dir/frame_0012.png"},
		{"noext", 3, "noext_0003"},
	}
	for _, tc := range tests {
		if got := framePath(tc.path, tc.frame); got != tc.want {
			t.Errorf("framePath(%q, %d) = %q, want %q", tc.path, tc.frame, got, tc.want)
		}
	}
}

func TestRootOptionsOverrides(t *testing.T) {
	opts := &rootOptions{width: 100, height: 50, workers: 3, mode: "depth"}
	cfg, err := opts.load()
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 || cfg.Raster.Workers != 3 || cfg.ShadingMode() != render.ModeDepth {
		t.Errorf("cfg = %+v", cfg)
	}

	bad := &rootOptions{mode: "sketch"}
	if _, err := bad.load(); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestMeshLabels(t *testing.T) {
	const cols, rows = 80, 24
	cfg := config.Default()
	cfg.Width, cfg.Height = cols, rows*2
	cfg.Rotate = false

	r, err := buildScene(cfg, log.New(io.Discard))
	if err != nil {
		t.Fatalf("buildScene() error = %v", err)
	}
	name := r.Meshes()[0].Name

	labels := meshLabels(r, cols, rows)
	if len(labels) != 1 {
		t.Fatalf("labels = %+v, want one", labels)
	}
	l := labels[0]
	if l.text != name {
		t.Errorf("text = %q, want %q", l.text, name)
	}
	// The default triangle spans y 0..2, so its center sits above the
	// middle row and on the middle column.
	if mid := cols/2 - len(name)/2; absInt(l.x-mid) > 1 {
		t.Errorf("x = %d, want about %d", l.x, mid)
	}
	if l.y <= 0 || l.y >= rows/2 {
		t.Errorf("y = %d, want in the upper half", l.y)
	}

	r.Camera().SetRotation(0, math.Pi)
	if labels := meshLabels(r, cols, rows); len(labels) != 0 {
		t.Errorf("labels behind the camera = %+v", labels)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
