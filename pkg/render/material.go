package render

import "github.com/taigrr/prism/pkg/models"

// Sampler returns the color of a 2D map at texture coordinates (u, v).
// Samplers are read concurrently from every raster worker.
type Sampler interface {
	Sample(u, v float64) Color
}

// SolidColor is a Sampler that returns the same color everywhere.
type SolidColor Color

// Sample implements Sampler.
func (s SolidColor) Sample(_, _ float64) Color {
	return Color(s)
}

// Material groups the maps a mesh is shaded with. Any map may be nil.
type Material struct {
	Diffuse  Sampler // base color
	Normal   Sampler // tangent-space normals, encoded 0.5 + 0.5*n
	Specular Sampler // specular strength in R
	Gloss    Sampler // glossiness in R, scales the shininess exponent
}

// MaterialFromModel wraps the images a model was loaded with.
func MaterialFromModel(m models.Material) Material {
	var mat Material
	if m.DiffuseMap != nil {
		mat.Diffuse = TextureFromImage(m.DiffuseMap)
	}
	if m.NormalMap != nil {
		mat.Normal = TextureFromImage(m.NormalMap)
	}
	return mat
}
