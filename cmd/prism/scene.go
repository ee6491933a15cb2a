package main

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/taigrr/prism/internal/config"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
)

// buildScene creates a renderer for cfg with every mesh loaded.
func buildScene(cfg config.Config, logger *log.Logger) (*render.Renderer, error) {
	shader := render.NewShader()
	shader.Light = render.Light{
		Direction: vec3(cfg.Light.Direction).Normalize(),
		Intensity: cfg.Light.Intensity,
	}
	shader.Shininess = cfg.Shading.Shininess
	shader.Ambient = math3d.Gray(cfg.Shading.Ambient)
	shader.DepthMin = cfg.Shading.DepthMin
	shader.DepthMax = cfg.Shading.DepthMax

	opts := render.DefaultOptions(cfg.Width, cfg.Height)
	opts.Workers = cfg.Raster.Workers
	opts.TileHeight = cfg.Raster.TileHeight
	opts.CullMode = cfg.CullMode()
	opts.ClearColor = render.RGB(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2])
	opts.Shader = shader
	opts.Flags = render.PipelineFlags{
		Texturing:     cfg.Shading.Texturing,
		NormalMapping: cfg.Shading.NormalMapping,
		Mode:          cfg.ShadingMode(),
	}
	opts.RotationSpeed = degToRad(cfg.RotationSpeed)
	opts.Rotate = cfg.Rotate
	opts.Logger = logger

	r := render.NewRenderer(newCamera(cfg.Camera), opts)
	loader := newMeshLoader()
	for _, mc := range cfg.Meshes {
		mesh, mat, err := loader.load(mc)
		if err != nil {
			return nil, fmt.Errorf("mesh %s: %w", mc.DisplayName(), err)
		}
		r.AddMesh(mesh, mat)
		logger.Info("loaded mesh", "name", mesh.Name,
			"vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())
	}
	return r, nil
}

func newCamera(cc config.CameraConfig) *render.Camera {
	cam := render.NewCamera()
	cam.SetOrigin(vec3(cc.Origin))
	cam.SetFOVDegrees(cc.FOV)
	cam.SetClipPlanes(cc.Near, cc.Far)
	if cc.LookAt != nil {
		cam.LookAt(vec3(*cc.LookAt))
	} else {
		cam.SetRotation(degToRad(cc.Pitch), degToRad(cc.Yaw))
	}
	return cam
}

// meshLoader builds scene meshes. A model file listed more than once is
// parsed once; later entries get their own copy so transforms stay
// independent.
type meshLoader struct {
	files map[string]*models.Mesh
}

func newMeshLoader() *meshLoader {
	return &meshLoader{files: make(map[string]*models.Mesh)}
}

// load builds the mesh and material of one scene entry.
func (l *meshLoader) load(mc config.MeshConfig) (*models.Mesh, render.Material, error) {
	var mesh *models.Mesh
	if mc.Path != "" {
		if m, ok := l.files[mc.Path]; ok {
			mesh = m.Clone()
		} else {
			m, err := models.LoadGLTF(mc.Path)
			if err != nil {
				return nil, render.Material{}, err
			}
			fitMesh(m)
			l.files[mc.Path] = m
			mesh = m.Clone()
		}
	} else {
		m, err := newPrimitive(mc.Primitive)
		if err != nil {
			return nil, render.Material{}, err
		}
		mesh = m
	}
	if mc.Name != "" {
		mesh.Name = mc.Name
	}

	mesh.SetScale(vec3(mc.MeshScale()))
	mesh.SetRotationY(degToRad(mc.Yaw))
	mesh.SetTranslation(vec3(mc.Position))

	mat := render.MaterialFromModel(mesh.Material)
	maps := []struct {
		path string
		dst  *render.Sampler
	}{
		{mc.Diffuse, &mat.Diffuse},
		{mc.Normal, &mat.Normal},
		{mc.Specular, &mat.Specular},
		{mc.Gloss, &mat.Gloss},
	}
	for _, m := range maps {
		if m.path == "" {
			continue
		}
		tex, err := render.LoadTexture(m.path)
		if err != nil {
			return nil, render.Material{}, err
		}
		*m.dst = tex
	}
	if mat.Diffuse == nil && mc.Checker {
		mat.Diffuse = render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	}
	return mesh, mat, nil
}

func newPrimitive(name string) (*models.Mesh, error) {
	switch name {
	case config.PrimitiveTriangle:
		return models.NewTriangleMesh(), nil
	case config.PrimitiveQuad:
		return models.NewQuadMesh(models.TriangleList), nil
	case config.PrimitiveStrip:
		return models.NewQuadMesh(models.TriangleStrip), nil
	case config.PrimitiveCube:
		return models.NewCubeMesh(), nil
	}
	return nil, fmt.Errorf("unknown primitive %q", name)
}

// fitMesh centers the mesh on the origin and scales it so its largest
// dimension is 2.
func fitMesh(m *models.Mesh) {
	m.CalculateBounds()
	center, size := m.Center(), m.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim <= 0 {
		return
	}
	s := 2 / maxDim
	for i := range m.Vertices {
		m.Vertices[i].Position = m.Vertices[i].Position.Sub(center).Scale(s)
	}
	m.CalculateBounds()
}

func vec3(v config.Vec3) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}
