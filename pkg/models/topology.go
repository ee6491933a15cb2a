package models

import "fmt"

// Topology describes how an index list is grouped into triangles.
type Topology uint8

const (
	// TriangleList reads independent triples: (0,1,2), (3,4,5), ...
	TriangleList Topology = iota
	// TriangleStrip reads overlapping triples (i, i+1, i+2). Every odd
	// triangle swaps its last two indices so winding stays consistent.
	TriangleStrip
)

func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "TriangleList"
	case TriangleStrip:
		return "TriangleStrip"
	default:
		return fmt.Sprintf("Topology(%d)", uint8(t))
	}
}

// Valid reports whether t is a known topology.
func (t Topology) Valid() bool {
	return t == TriangleList || t == TriangleStrip
}

// TriangleCount returns how many triangles n indices describe.
func (t Topology) TriangleCount(n int) int {
	switch t {
	case TriangleList:
		return n / 3
	case TriangleStrip:
		if n < 3 {
			return 0
		}
		return n - 2
	default:
		return 0
	}
}

// Triangle returns the vertex indices of triangle i.
// The caller guarantees 0 <= i < t.TriangleCount(len(indices)).
func (t Topology) Triangle(indices []uint32, i int) (a, b, c uint32) {
	if t == TriangleStrip {
		a, b, c = indices[i], indices[i+1], indices[i+2]
		if i&1 == 1 {
			b, c = c, b
		}
		return a, b, c
	}
	base := i * 3
	return indices[base], indices[base+1], indices[base+2]
}

// ExpandStrip converts strip indices into an equivalent list, dropping
// triangles that repeat an index.
func ExpandStrip(indices []uint32) []uint32 {
	n := TriangleStrip.TriangleCount(len(indices))
	out := make([]uint32, 0, n*3)
	for i := range n {
		a, b, c := TriangleStrip.Triangle(indices, i)
		if a == b || b == c || a == c {
			continue
		}
		out = append(out, a, b, c)
	}
	return out
}
