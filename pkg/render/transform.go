package render

import (
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

// VertexOut is a vertex after the transform stage.
type VertexOut struct {
	// X, Y in raster pixels with (0, 0) at the top-left, Z the depth after
	// the perspective divide and W the view-space depth before it.
	Position math3d.Vec4

	Color         math3d.ColorRGB
	UV            math3d.Vec2
	Normal        math3d.Vec3 // world space, unit length
	Tangent       math3d.Vec3 // world space, unit length
	ViewDirection math3d.Vec3 // camera origin to world position, not normalized
}

// TransformVertices projects vertices into raster space. Output i
// corresponds to input i. dst is reused when it has enough capacity.
// Nothing is culled here; a vertex with W == 0 keeps its undivided X, Y, Z.
func TransformVertices(dst []VertexOut, vertices []models.Vertex, world, viewProj math3d.Mat4, origin math3d.Vec3, width, height int) []VertexOut {
	if cap(dst) < len(vertices) {
		dst = make([]VertexOut, len(vertices))
	}
	dst = dst[:len(vertices)]

	wvp := viewProj.Mul(world)
	halfW, halfH := float64(width)*0.5, float64(height)*0.5

	for i := range vertices {
		v := &vertices[i]
		clip := wvp.MulVec4(math3d.V4FromV3(v.Position, 1))

		p := clip
		if clip.W != 0 {
			invW := 1 / clip.W
			p.X *= invW
			p.Y *= invW
			p.Z *= invW
		}
		p.X = (p.X + 1) * halfW
		p.Y = (1 - p.Y) * halfH // Y flipped

		dst[i] = VertexOut{
			Position:      p,
			Color:         v.Color,
			UV:            v.UV,
			Normal:        world.MulVec3Dir(v.Normal).Normalize(),
			Tangent:       world.MulVec3Dir(v.Tangent).Normalize(),
			ViewDirection: world.MulVec3(v.Position).Sub(origin),
		}
	}
	return dst
}
