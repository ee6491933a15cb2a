// Package config loads prism scene files.
//
// A scene file is YAML. Every key is optional; missing keys keep the
// values of Default. Relative mesh and texture paths are resolved against
// the directory of the scene file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/prism/pkg/render"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid config")

// maxConfigSize bounds the scene files Load accepts.
const maxConfigSize = 1 << 20

// Builtin primitive names accepted in MeshConfig.Primitive.
const (
	PrimitiveTriangle = "triangle"
	PrimitiveQuad     = "quad"
	PrimitiveStrip    = "strip"
	PrimitiveCube     = "cube"
)

var primitives = []string{PrimitiveTriangle, PrimitiveQuad, PrimitiveStrip, PrimitiveCube}

// Vec3 is written as a YAML sequence [x, y, z].
type Vec3 [3]float64

// RGB is written as a YAML sequence [r, g, b] of 0-255 values.
type RGB [3]uint8

// Config is a complete scene description.
type Config struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Output   string `yaml:"output"`
	LogLevel string `yaml:"log_level"`

	ClearColor RGB `yaml:"clear_color"`

	// RotationSpeed is in degrees per second.
	RotationSpeed float64 `yaml:"rotation_speed"`
	Rotate        bool    `yaml:"rotate"`

	Camera  CameraConfig  `yaml:"camera"`
	Light   LightConfig   `yaml:"light"`
	Shading ShadingConfig `yaml:"shading"`
	Raster  RasterConfig  `yaml:"raster"`

	Meshes []MeshConfig `yaml:"meshes"`
}

// CameraConfig places the camera. Angles are in degrees.
type CameraConfig struct {
	Origin Vec3    `yaml:"origin"`
	FOV    float64 `yaml:"fov"`
	Near   float64 `yaml:"near"`
	Far    float64 `yaml:"far"`
	Pitch  float64 `yaml:"pitch"`
	Yaw    float64 `yaml:"yaw"`
	// LookAt, when set, overrides Pitch and Yaw.
	LookAt *Vec3 `yaml:"look_at"`
}

type LightConfig struct {
	Direction Vec3    `yaml:"direction"`
	Intensity float64 `yaml:"intensity"`
}

type ShadingConfig struct {
	Mode          string  `yaml:"mode"`
	Shininess     float64 `yaml:"shininess"`
	Ambient       float64 `yaml:"ambient"`
	DepthMin      float64 `yaml:"depth_min"`
	DepthMax      float64 `yaml:"depth_max"`
	Texturing     bool    `yaml:"texturing"`
	NormalMapping bool    `yaml:"normal_mapping"`
}

type RasterConfig struct {
	Workers    int    `yaml:"workers"`
	TileHeight int    `yaml:"tile_height"`
	CullMode   string `yaml:"cull_mode"`
}

// MeshConfig is one mesh of the scene: either a glTF file or a builtin
// primitive.
type MeshConfig struct {
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	Primitive string `yaml:"primitive"`

	Position Vec3    `yaml:"position"`
	Scale    *Vec3   `yaml:"scale"`
	Yaw      float64 `yaml:"yaw"` // degrees

	// Optional texture files. Diffuse and normal maps override the ones
	// embedded in a glTF file.
	Diffuse  string `yaml:"diffuse"`
	Normal   string `yaml:"normal"`
	Specular string `yaml:"specular"`
	Gloss    string `yaml:"gloss"`

	// Checker applies a procedural checkerboard when no diffuse map is
	// available.
	Checker bool `yaml:"checker"`
}

// Default returns the demo scene: the colored triangle in front of the
// default camera.
func Default() Config {
	return Config{
		Width:         640,
		Height:        360,
		Output:        render.DefaultImagePath,
		LogLevel:      "info",
		ClearColor:    RGB{99, 99, 99},
		RotationSpeed: 45,
		Rotate:        true,
		Camera: CameraConfig{
			Origin: Vec3{0, 0, -10},
			FOV:    60,
			Near:   0.1,
			Far:    100,
		},
		Light: LightConfig{
			Direction: Vec3{0.577, -0.577, 0.577},
			Intensity: 7,
		},
		Shading: ShadingConfig{
			Mode:          render.ModeCombined.String(),
			Shininess:     25,
			Ambient:       0.025,
			DepthMin:      0.995,
			DepthMax:      1,
			Texturing:     true,
			NormalMapping: true,
		},
		Raster: RasterConfig{
			TileHeight: render.DefaultTileHeight,
			CullMode:   render.CullSameSide.String(),
		},
		Meshes: []MeshConfig{{Name: "triangle", Primitive: PrimitiveTriangle}},
	}
}

// Load reads and validates the scene file at path.
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrInvalidConfig, path, info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes a scene from YAML on top of Default and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Width > 0 && c.Height > 0, "size %dx%d must be positive", c.Width, c.Height)
	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera fov %v must be in (0, 180)", c.Camera.FOV)
	check(c.Camera.Near > 0 && c.Camera.Near < c.Camera.Far, "camera clip planes %v, %v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	check(c.Light.Direction != Vec3{}, "light direction must be non-zero")
	check(c.Light.Intensity >= 0, "light intensity %v must not be negative", c.Light.Intensity)
	check(c.Shading.Shininess > 0, "shininess %v must be positive", c.Shading.Shininess)
	check(c.Shading.DepthMin < c.Shading.DepthMax, "depth range [%v, %v] is empty", c.Shading.DepthMin, c.Shading.DepthMax)
	check(c.Raster.Workers >= 0, "raster workers %d must not be negative", c.Raster.Workers)
	check(c.Raster.TileHeight >= 0, "tile height %d must not be negative", c.Raster.TileHeight)

	if _, err := render.ParseShadingMode(c.Shading.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := render.ParseCullMode(c.Raster.CullMode); err != nil {
		errs = append(errs, err)
	}

	for i, m := range c.Meshes {
		switch {
		case m.Path == "" && m.Primitive == "":
			errs = append(errs, fmt.Errorf("mesh %d: one of path or primitive is required", i))
		case m.Path != "" && m.Primitive != "":
			errs = append(errs, fmt.Errorf("mesh %d: path and primitive are exclusive", i))
		case m.Primitive != "" && !slices.Contains(primitives, m.Primitive):
			errs = append(errs, fmt.Errorf("mesh %d: unknown primitive %q", i, m.Primitive))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// ShadingMode returns the parsed shading mode. Call after Validate.
func (c *Config) ShadingMode() render.ShadingMode {
	m, _ := render.ParseShadingMode(c.Shading.Mode)
	return m
}

// CullMode returns the parsed cull mode. Call after Validate.
func (c *Config) CullMode() render.CullMode {
	m, _ := render.ParseCullMode(c.Raster.CullMode)
	return m
}

// MeshScale returns the configured scale, or 1 on every axis.
func (m MeshConfig) MeshScale() Vec3 {
	if m.Scale == nil {
		return Vec3{1, 1, 1}
	}
	return *m.Scale
}

// DisplayName returns Name, or the file or primitive name.
func (m MeshConfig) DisplayName() string {
	switch {
	case m.Name != "":
		return m.Name
	case m.Path != "":
		return filepath.Base(m.Path)
	default:
		return m.Primitive
	}
}

func (c *Config) resolvePaths(dir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	for i := range c.Meshes {
		m := &c.Meshes[i]
		resolve(&m.Path)
		resolve(&m.Diffuse)
		resolve(&m.Normal)
		resolve(&m.Specular)
		resolve(&m.Gloss)
	}
}
