package render

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/log"

	"github.com/taigrr/prism/pkg/models"
)

// DefaultImagePath is where SaveBufferToImage writes when given no path.
const DefaultImagePath = "Rasterizer_ColorBuffer.bmp"

// Options configures a Renderer.
type Options struct {
	Width, Height int

	Workers    int // raster goroutines, < 1 means runtime.NumCPU()
	TileHeight int
	CullMode   CullMode

	ClearColor Color
	Shader     *Shader
	Flags      PipelineFlags

	// RotationSpeed is the yaw rate in radians per second while rotation
	// is on. Speed changes are smoothed by a critically damped spring.
	RotationSpeed float64
	Rotate        bool

	Logger *log.Logger
}

// DefaultOptions returns options for a width x height target.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:         width,
		Height:        height,
		TileHeight:    DefaultTileHeight,
		ClearColor:    ColorGray,
		Shader:        NewShader(),
		Flags:         DefaultPipelineFlags(),
		RotationSpeed: math.Pi / 4,
		Rotate:        true,
	}
}

// FrameStats summarizes the last rendered frame.
type FrameStats struct {
	MeshesDrawn  int
	MeshesCulled int
	RasterStats
}

// sceneMesh is a mesh with the material it is drawn with and its yaw
// before any animation.
type sceneMesh struct {
	mesh     *models.Mesh
	material Material
	baseYaw  float64
}

// Renderer owns the scene, camera and buffers and drives one frame at a
// time: clear, transform, rasterize, shade.
type Renderer struct {
	camera     *Camera
	shader     *Shader
	flags      PipelineFlags
	clearColor Color
	logger     *log.Logger

	fb         *Framebuffer
	depth      *DepthBuffer
	rasterizer *Rasterizer
	verts      []VertexOut

	meshes []sceneMesh
	stats  FrameStats

	// Rotation state.
	rotate        bool
	rotationSpeed float64
	yaw           float64
	speed         float64
	accel         float64

	// Mode to return to when depth visualization is switched off.
	prevMode ShadingMode
}

// NewRenderer creates a renderer for camera. The camera aspect ratio is
// set from the output size.
func NewRenderer(camera *Camera, opts Options) *Renderer {
	if opts.Shader == nil {
		opts.Shader = NewShader()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fb := NewFramebuffer(opts.Width, opts.Height)
	depth := NewDepthBuffer(opts.Width, opts.Height)
	rast := NewRasterizer(fb, depth)
	if opts.Workers > 0 {
		rast.Workers = opts.Workers
	}
	if opts.TileHeight > 0 {
		rast.TileHeight = opts.TileHeight
	}
	rast.CullMode = opts.CullMode

	if opts.Height > 0 {
		camera.SetAspectRatio(float64(opts.Width) / float64(opts.Height))
	}

	r := &Renderer{
		camera:        camera,
		shader:        opts.Shader,
		flags:         opts.Flags,
		clearColor:    opts.ClearColor,
		logger:        logger,
		fb:            fb,
		depth:         depth,
		rasterizer:    rast,
		rotate:        opts.Rotate,
		rotationSpeed: opts.RotationSpeed,
		prevMode:      ModeCombined,
	}
	if opts.Rotate {
		r.speed = opts.RotationSpeed
	}
	return r
}

// Camera returns the renderer's camera.
func (r *Renderer) Camera() *Camera {
	return r.camera
}

// Flags returns the current pipeline flags.
func (r *Renderer) Flags() PipelineFlags {
	return r.flags
}

// Rotating reports whether model rotation is switched on.
func (r *Renderer) Rotating() bool {
	return r.rotate
}

// Stats returns the statistics of the last frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Framebuffer returns the color buffer. Its contents are those of the last
// RenderFrame.
func (r *Renderer) Framebuffer() *Framebuffer {
	return r.fb
}

// AddMesh adds a mesh to the scene. The mesh's current yaw is taken from
// its rotation matrix as the starting angle.
func (r *Renderer) AddMesh(mesh *models.Mesh, mat Material) {
	mesh.CalculateBounds()
	rm := mesh.RotationMatrix
	r.meshes = append(r.meshes, sceneMesh{
		mesh:     mesh,
		material: mat,
		baseYaw:  math.Atan2(rm[8], rm[0]),
	})
	r.logger.Debug("mesh added", "name", mesh.Name,
		"vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount(),
		"topology", mesh.Topology)
}

// ClearMeshes removes every mesh from the scene.
func (r *Renderer) ClearMeshes() {
	r.meshes = r.meshes[:0]
}

// Meshes returns the meshes in draw order.
func (r *Renderer) Meshes() []*models.Mesh {
	out := make([]*models.Mesh, len(r.meshes))
	for i, m := range r.meshes {
		out[i] = m.mesh
	}
	return out
}

// Resize changes the output size.
func (r *Renderer) Resize(width, height int) {
	r.fb.Resize(width, height)
	r.depth.Resize(width, height)
	if height > 0 {
		r.camera.SetAspectRatio(float64(width) / float64(height))
	}
}

// Update advances the scene animation by elapsed. While rotation is on
// every mesh spins around Y; toggling rotation eases the speed in or out.
func (r *Renderer) Update(elapsed time.Duration) {
	dt := elapsed.Seconds()
	if dt <= 0 {
		return
	}

	target := 0.0
	if r.rotate {
		target = r.rotationSpeed
	}
	spring := harmonica.NewSpring(dt, 6.0, 1.0)
	r.speed, r.accel = spring.Update(r.speed, r.accel, target)

	r.yaw = math.Mod(r.yaw+r.speed*dt, 2*math.Pi)
	for _, m := range r.meshes {
		m.mesh.SetRotationY(m.baseYaw + r.yaw)
	}
}

// RenderFrame draws every mesh and returns the color buffer.
func (r *Renderer) RenderFrame() *Framebuffer {
	flags := r.flags
	if !flags.Mode.Valid() {
		panic(fmt.Sprintf("render: unknown shading mode %v", flags.Mode))
	}

	r.fb.Clear(r.clearColor)
	r.depth.Reset()
	r.stats = FrameStats{}

	viewProj := r.camera.ViewProjectionMatrix()
	frustum := NewFrustumFromMatrix(viewProj)
	origin := r.camera.Origin
	w, h := r.fb.Width, r.fb.Height

	for i := range r.meshes {
		sm := &r.meshes[i]
		mesh := sm.mesh
		if len(mesh.Indices) == 0 || len(mesh.Vertices) == 0 {
			continue
		}

		world := mesh.WorldMatrix()
		if !frustum.IntersectAABB(NewAABB(mesh.BoundsMin, mesh.BoundsMax).Transform(world)) {
			r.stats.MeshesCulled++
			r.logger.Debug("mesh culled", "name", mesh.Name)
			continue
		}
		r.stats.MeshesDrawn++

		r.verts = TransformVertices(r.verts, mesh.Vertices, world, viewProj, origin, w, h)

		mat := &sm.material
		shade := func(f *Fragment) Color {
			return r.shader.Shade(f, mat, flags)
		}
		r.stats.Add(r.rasterizer.DrawIndexed(r.verts, mesh.Indices, mesh.Topology, shade))
	}
	return r.fb
}

// ToggleShadingMode cycles observed-area, diffuse, specular, combined.
// While depth visualization is on, the mode restored afterwards advances.
func (r *Renderer) ToggleShadingMode() {
	if r.flags.Mode == ModeDepth {
		r.prevMode = r.prevMode.Next()
		r.logger.Info("shading mode", "mode", r.prevMode, "depth", true)
		return
	}
	r.flags.Mode = r.flags.Mode.Next()
	r.logger.Info("shading mode", "mode", r.flags.Mode)
}

// ToggleDepthVisualization switches depth display on or off.
func (r *Renderer) ToggleDepthVisualization() {
	if r.flags.Mode == ModeDepth {
		r.flags.Mode = r.prevMode
	} else {
		r.prevMode = r.flags.Mode
		r.flags.Mode = ModeDepth
	}
	r.logger.Info("depth visualization", "on", r.flags.Mode == ModeDepth)
}

// ToggleRotation starts or stops the model rotation.
func (r *Renderer) ToggleRotation() {
	r.rotate = !r.rotate
	r.logger.Info("rotation", "on", r.rotate)
}

// ToggleNormalMap switches normal mapping on or off.
func (r *Renderer) ToggleNormalMap() {
	r.flags.NormalMapping = !r.flags.NormalMapping
	r.logger.Info("normal map", "on", r.flags.NormalMapping)
}

// ToggleTexture switches diffuse texturing on or off. With texturing off
// the interpolated vertex color is lit instead.
func (r *Renderer) ToggleTexture() {
	r.flags.Texturing = !r.flags.Texturing
	r.logger.Info("texturing", "on", r.flags.Texturing)
}

// SaveBufferToImage writes the last frame to path, BMP or PNG by
// extension. An empty path writes DefaultImagePath.
func (r *Renderer) SaveBufferToImage(path string) error {
	if path == "" {
		path = DefaultImagePath
	}
	if err := r.fb.Save(path); err != nil {
		return fmt.Errorf("save color buffer: %w", err)
	}
	r.logger.Info("color buffer saved", "path", path)
	return nil
}
