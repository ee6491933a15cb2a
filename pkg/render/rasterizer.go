package render

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

// CullMode selects the per-triangle early reject test.
type CullMode int

const (
	// CullSameSide skips a triangle when all three vertices lie beyond the
	// same viewport edge, or when any vertex is behind the eye.
	CullSameSide CullMode = iota
	// CullAnyOutside skips a triangle when any vertex falls outside the
	// viewport or the [0, 1] depth range. Partially visible triangles
	// near the border disappear.
	CullAnyOutside
)

func (m CullMode) String() string {
	switch m {
	case CullSameSide:
		return "same-side"
	case CullAnyOutside:
		return "any-outside"
	default:
		return "unknown"
	}
}

// ParseCullMode parses a cull mode name as printed by String.
func ParseCullMode(s string) (CullMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "same-side":
		return CullSameSide, nil
	case "any-outside":
		return CullAnyOutside, nil
	}
	return 0, fmt.Errorf("unknown cull mode %q", s)
}

// DefaultTileHeight is the number of rows each raster worker owns.
const DefaultTileHeight = 16

// Fragment is a covered pixel that passed the depth test, with every
// attribute interpolated perspective-correctly.
type Fragment struct {
	X, Y  int
	Depth float64 // post-divide depth in [0, 1]
	W     float64 // interpolated view-space depth

	Color         math3d.ColorRGB
	UV            math3d.Vec2
	Normal        math3d.Vec3 // unit length
	Tangent       math3d.Vec3 // unit length
	ViewDirection math3d.Vec3 // unit length
}

// FragmentFunc shades a fragment. It is called concurrently from several
// workers and must not retain f.
type FragmentFunc func(f *Fragment) Color

// RasterStats counts what happened to the triangles of one draw.
type RasterStats struct {
	TrianglesSubmitted  int
	TrianglesRejected   int // early reject, back-facing or off-screen
	TrianglesDegenerate int // repeated index or zero area
	FragmentsShaded     int
}

// Add accumulates o into s.
func (s *RasterStats) Add(o RasterStats) {
	s.TrianglesSubmitted += o.TrianglesSubmitted
	s.TrianglesRejected += o.TrianglesRejected
	s.TrianglesDegenerate += o.TrianglesDegenerate
	s.FragmentsShaded += o.FragmentsShaded
}

// Rasterizer scan-converts triangles into a framebuffer and depth buffer
// of the same size. A Rasterizer is not safe for concurrent draws; each
// draw fans out internally.
type Rasterizer struct {
	// Workers bounds the goroutines used per draw. Values below 1 mean
	// runtime.NumCPU().
	Workers int
	// TileHeight is the height of the row bands workers own.
	TileHeight int
	CullMode   CullMode

	fb    *Framebuffer
	depth *DepthBuffer

	// Scratch reused across draws.
	tris   []setupTriangle
	bins   [][]int32
	counts []int
}

// NewRasterizer creates a rasterizer drawing into fb and depth.
func NewRasterizer(fb *Framebuffer, depth *DepthBuffer) *Rasterizer {
	return &Rasterizer{
		Workers:    runtime.NumCPU(),
		TileHeight: DefaultTileHeight,
		fb:         fb,
		depth:      depth,
	}
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	return r.fb.Height
}

// setupTriangle is everything the per-pixel loop needs about a triangle.
type setupTriangle struct {
	v       [3]*VertexOut
	e       [3]edge // e[i] is opposite vertex i
	invArea float64
	invZ    [3]float64
	invW    [3]float64

	minX, maxX int
	minY, maxY int
}

// DrawIndexed rasterizes the triangles described by indices over the
// transformed vertices. With a nil shade the interpolated vertex color is
// written directly.
func (r *Rasterizer) DrawIndexed(verts []VertexOut, indices []uint32, topology models.Topology, shade FragmentFunc) RasterStats {
	var stats RasterStats
	n := topology.TriangleCount(len(indices))
	stats.TrianglesSubmitted = n

	r.tris = r.tris[:0]
	nv := uint32(len(verts))
	for i := range n {
		a, b, c := topology.Triangle(indices, i)
		if a >= nv || b >= nv || c >= nv {
			stats.TrianglesRejected++
			continue
		}
		if a == b || b == c || a == c {
			stats.TrianglesDegenerate++
			continue
		}

		v0, v1, v2 := &verts[a], &verts[b], &verts[c]
		if r.reject(v0, v1, v2) {
			stats.TrianglesRejected++
			continue
		}

		tri, res := r.setup(v0, v1, v2)
		switch res {
		case setupDegenerate:
			stats.TrianglesDegenerate++
		case setupRejected:
			stats.TrianglesRejected++
		default:
			r.tris = append(r.tris, tri)
		}
	}

	if len(r.tris) > 0 {
		stats.FragmentsShaded = r.drawTiles(shade)
	}
	return stats
}

// reject is the cheap early-out test selected by CullMode.
func (r *Rasterizer) reject(v0, v1, v2 *VertexOut) bool {
	p0, p1, p2 := v0.Position, v1.Position, v2.Position
	w, h := float64(r.fb.Width), float64(r.fb.Height)

	if r.CullMode == CullAnyOutside {
		for _, p := range [3]math3d.Vec4{p0, p1, p2} {
			if p.W <= 0 || p.X < 0 || p.X > w || p.Y < 0 || p.Y > h || p.Z < 0 || p.Z > 1 {
				return true
			}
		}
		return false
	}

	if p0.W <= 0 || p1.W <= 0 || p2.W <= 0 {
		return true
	}
	switch {
	case p0.X < 0 && p1.X < 0 && p2.X < 0:
		return true
	case p0.X > w && p1.X > w && p2.X > w:
		return true
	case p0.Y < 0 && p1.Y < 0 && p2.Y < 0:
		return true
	case p0.Y > h && p1.Y > h && p2.Y > h:
		return true
	}
	return false
}

type setupResult int

const (
	setupOK setupResult = iota
	setupDegenerate
	setupRejected
)

// setup computes edge equations, the reciprocal area and the clamped
// bounding box.
func (r *Rasterizer) setup(v0, v1, v2 *VertexOut) (setupTriangle, setupResult) {
	p0, p1, p2 := v0.Position, v1.Position, v2.Position

	tri := setupTriangle{v: [3]*VertexOut{v0, v1, v2}}
	tri.e[0] = newEdge(p1.X, p1.Y, p2.X, p2.Y)
	tri.e[1] = newEdge(p2.X, p2.Y, p0.X, p0.Y)
	tri.e[2] = newEdge(p0.X, p0.Y, p1.X, p1.Y)

	area := tri.e[2].eval(p2.X, p2.Y)
	if area == 0 || math.IsNaN(area) {
		return tri, setupDegenerate
	}
	if area < 0 {
		return tri, setupRejected
	}
	tri.invArea = 1 / area

	for i, p := range [3]math3d.Vec4{p0, p1, p2} {
		tri.invZ[i] = 1 / p.Z
		tri.invW[i] = 1 / p.W
	}

	// Clamp before converting: a vertex near the eye plane can project far
	// outside the int range.
	w, h := float64(r.fb.Width), float64(r.fb.Height)
	tri.minX = int(math.Floor(clampFloat(min(p0.X, p1.X, p2.X), 0, w)))
	tri.maxX = int(math.Ceil(clampFloat(max(p0.X, p1.X, p2.X), -1, w-1)))
	tri.minY = int(math.Floor(clampFloat(min(p0.Y, p1.Y, p2.Y), 0, h)))
	tri.maxY = int(math.Ceil(clampFloat(max(p0.Y, p1.Y, p2.Y), -1, h-1)))
	if tri.minX > tri.maxX || tri.minY > tri.maxY {
		return tri, setupRejected
	}
	return tri, setupOK
}

// scan rasterizes rows y0..y1 (inclusive) of tri and returns the number
// of fragments that passed the depth test.
func (r *Rasterizer) scan(tri *setupTriangle, y0, y1 int, shade FragmentFunc) int {
	fb, depth := r.fb, r.depth
	width := fb.Width
	written := 0

	for y := y0; y <= y1; y++ {
		py := float64(y) + 0.5
		row := y * width

		for x := tri.minX; x <= tri.maxX; x++ {
			px := float64(x) + 0.5

			w0 := tri.e[0].eval(px, py)
			if !tri.e[0].covers(w0) {
				continue
			}
			w1 := tri.e[1].eval(px, py)
			if !tri.e[1].covers(w1) {
				continue
			}
			w2 := tri.e[2].eval(px, py)
			if !tri.e[2].covers(w2) {
				continue
			}

			b0, b1, b2 := w0*tri.invArea, w1*tri.invArea, w2*tri.invArea

			z := 1 / (b0*tri.invZ[0] + b1*tri.invZ[1] + b2*tri.invZ[2])
			if !(z >= 0 && z <= 1) {
				continue
			}
			if !depth.testAndSet(row+x, z) {
				continue
			}
			written++

			frag := interpolate(tri, b0, b1, b2)
			frag.X, frag.Y, frag.Depth = x, y, z

			if shade == nil {
				fb.Pixels[row+x] = ToColor(frag.Color.MaxToOne())
			} else {
				fb.Pixels[row+x] = shade(&frag)
			}
		}
	}
	return written
}

// interpolate blends vertex attributes with perspective correction:
// each barycentric weight is divided by its vertex W and the sum
// renormalized by the interpolated W.
func interpolate(tri *setupTriangle, b0, b1, b2 float64) Fragment {
	q0, q1, q2 := b0*tri.invW[0], b1*tri.invW[1], b2*tri.invW[2]
	w := 1 / (q0 + q1 + q2)
	q0, q1, q2 = q0*w, q1*w, q2*w

	v0, v1, v2 := tri.v[0], tri.v[1], tri.v[2]
	return Fragment{
		W: w,
		Color: v0.Color.Scale(q0).
			Add(v1.Color.Scale(q1)).
			Add(v2.Color.Scale(q2)),
		UV: v0.UV.Scale(q0).
			Add(v1.UV.Scale(q1)).
			Add(v2.UV.Scale(q2)),
		Normal:        blend3(v0.Normal, v1.Normal, v2.Normal, q0, q1, q2).Normalize(),
		Tangent:       blend3(v0.Tangent, v1.Tangent, v2.Tangent, q0, q1, q2).Normalize(),
		ViewDirection: blend3(v0.ViewDirection, v1.ViewDirection, v2.ViewDirection, q0, q1, q2).Normalize(),
	}
}

func blend3(a, b, c math3d.Vec3, wa, wb, wc float64) math3d.Vec3 {
	return math3d.Vec3{
		X: a.X*wa + b.X*wb + c.X*wc,
		Y: a.Y*wa + b.Y*wb + c.Y*wc,
		Z: a.Z*wa + b.Z*wb + c.Z*wc,
	}
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
