package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/prism/pkg/math3d"
)

// ShadingMode selects what the fragment shader outputs.
type ShadingMode int

const (
	ModeObservedArea ShadingMode = iota // Lambert cosine as gray
	ModeDiffuse                         // light * diffuse * cosine
	ModeSpecular                        // Phong term * cosine
	ModeCombined                        // light * (diffuse + specular + ambient) * cosine
	ModeDepth                           // remapped depth as gray, no lighting
)

var modeNames = map[ShadingMode]string{
	ModeObservedArea: "observed-area",
	ModeDiffuse:      "diffuse",
	ModeSpecular:     "specular",
	ModeCombined:     "combined",
	ModeDepth:        "depth",
}

func (m ShadingMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ShadingMode(%d)", int(m))
}

// Next returns the following lighting mode in the cycle
// observed-area, diffuse, specular, combined. Depth is not part of it.
func (m ShadingMode) Next() ShadingMode {
	switch m {
	case ModeObservedArea:
		return ModeDiffuse
	case ModeDiffuse:
		return ModeSpecular
	case ModeSpecular:
		return ModeCombined
	default:
		return ModeObservedArea
	}
}

// Valid reports whether m is a known mode.
func (m ShadingMode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseShadingMode parses a mode name as printed by String.
func ParseShadingMode(s string) (ShadingMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown shading mode %q", s)
}

// PipelineFlags are the runtime switches of the shading pipeline.
type PipelineFlags struct {
	Texturing     bool
	NormalMapping bool
	Mode          ShadingMode
}

// DefaultPipelineFlags enables every map and starts in combined mode.
func DefaultPipelineFlags() PipelineFlags {
	return PipelineFlags{Texturing: true, NormalMapping: true, Mode: ModeCombined}
}

// Light is a directional light.
type Light struct {
	Direction math3d.Vec3 // direction the light travels, unit length
	Intensity float64
}

// DefaultLight points down, right and away from a camera looking down +Z.
func DefaultLight() Light {
	return Light{
		Direction: math3d.V3(0.577, -0.577, 0.577).Normalize(),
		Intensity: 7,
	}
}

// Shader turns interpolated fragments into colors. It holds no per-frame
// state, so one Shader is safely shared by all raster workers.
type Shader struct {
	Light     Light
	Shininess float64
	Ambient   math3d.ColorRGB
	Kd        float64

	// Depth visualization maps [DepthMin, DepthMax] onto black..white.
	DepthMin float64
	DepthMax float64
}

// NewShader returns a shader with the default light and material constants.
func NewShader() *Shader {
	return &Shader{
		Light:     DefaultLight(),
		Shininess: 25,
		Ambient:   math3d.Gray(0.025),
		Kd:        1,
		DepthMin:  0.995,
		DepthMax:  1,
	}
}

// Shade computes the color of f. It panics on an unknown mode.
func (s *Shader) Shade(f *Fragment, mat *Material, flags PipelineFlags) Color {
	return ToColor(s.shade(f, mat, flags).MaxToOne())
}

func (s *Shader) shade(f *Fragment, mat *Material, flags PipelineFlags) math3d.ColorRGB {
	if flags.Mode == ModeDepth {
		return math3d.Gray(remap(f.Depth, s.DepthMin, s.DepthMax))
	}
	if !flags.Mode.Valid() {
		panic(fmt.Sprintf("render: unknown shading mode %v", flags.Mode))
	}

	n := f.Normal
	if flags.NormalMapping && mat.Normal != nil {
		n = perturbNormal(n, f.Tangent, sample(mat.Normal, f.UV))
	}

	toLight := s.Light.Direction.Negate()
	cosine := n.Dot(toLight)
	if cosine <= 0 {
		return math3d.ColorRGB{}
	}

	switch flags.Mode {
	case ModeObservedArea:
		return math3d.Gray(cosine)
	case ModeDiffuse:
		return s.diffuse(f, mat, flags).Scale(s.Light.Intensity * cosine)
	case ModeSpecular:
		return s.specular(f, mat, n, toLight).Scale(cosine)
	case ModeCombined:
		c := s.diffuse(f, mat, flags).Scale(s.Light.Intensity).
			Add(s.specular(f, mat, n, toLight)).
			Add(s.Ambient)
		return c.Scale(cosine)
	}
	panic(fmt.Sprintf("render: unknown shading mode %v", flags.Mode))
}

// diffuse is the Lambert term: base color * kd / pi.
func (s *Shader) diffuse(f *Fragment, mat *Material, flags PipelineFlags) math3d.ColorRGB {
	base := f.Color
	if flags.Texturing && mat.Diffuse != nil {
		base = sample(mat.Diffuse, f.UV)
	}
	return base.Scale(s.Kd / math.Pi)
}

// specular is the Phong term, gray. Strength and glossiness come from the
// red channel of their maps.
func (s *Shader) specular(f *Fragment, mat *Material, n, toLight math3d.Vec3) math3d.ColorRGB {
	ks, gloss := 0.5, 1.0
	if mat.Specular != nil {
		ks = sample(mat.Specular, f.UV).R
	}
	if mat.Gloss != nil {
		gloss = sample(mat.Gloss, f.UV).R
	}

	r := toLight.Reflect(n)
	rv := math.Max(0, r.Dot(f.ViewDirection))
	return math3d.Gray(ks * s.Shininess * math.Pow(rv, gloss*s.Shininess))
}

// perturbNormal moves a tangent-space map sample into world space.
func perturbNormal(n, t math3d.Vec3, c math3d.ColorRGB) math3d.Vec3 {
	b := n.Cross(t)
	sx, sy, sz := 2*c.R-1, 2*c.G-1, 2*c.B-1
	return t.Scale(sx).Add(b.Scale(sy)).Add(n.Scale(sz)).Normalize()
}

func sample(s Sampler, uv math3d.Vec2) math3d.ColorRGB {
	return FromColor(s.Sample(uv.X, uv.Y))
}

// remap maps v from [lo, hi] to [0, 1], clamped.
func remap(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	t := (v - lo) / (hi - lo)
	return math.Max(0, math.Min(1, t))
}
