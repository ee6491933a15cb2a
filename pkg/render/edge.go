package render

// edge is the line equation A*x + B*y + C of a directed triangle edge.
// For a point p and edge a->b it equals
// (b.x-a.x)(p.y-a.y) - (b.y-a.y)(p.x-a.x), positive on the inner side of
// a clockwise (in raster space) triangle.
type edge struct {
	A, B, C float64

	// Pixels exactly on a top or left edge belong to this triangle.
	topLeft bool
}

func newEdge(x0, y0, x1, y1 float64) edge {
	e := edge{
		A: y0 - y1,
		B: x1 - x0,
		C: x0*y1 - x1*y0,
	}
	// Raster Y points down: a left edge runs upward, a top edge runs
	// rightward along a horizontal line.
	e.topLeft = e.A > 0 || (e.A == 0 && e.B > 0)
	return e
}

func (e edge) eval(x, y float64) float64 {
	return e.A*x + e.B*y + e.C
}

// covers reports whether a point with edge value w is on the inner side.
// The opposite edge of a neighboring triangle evaluates to exactly -w, so
// a pixel on a shared edge is claimed by exactly one of the two.
func (e edge) covers(w float64) bool {
	return w > 0 || (w == 0 && e.topLeft)
}
