package models

import (
	"slices"
	"testing"
)

func TestTopologyTriangleCount(t *testing.T) {
	tests := []struct {
		name     string
		topology Topology
		indices  int
		want     int
	}{
		{"list empty", TriangleList, 0, 0},
		{"list one", TriangleList, 3, 1},
		{"list trailing indices", TriangleList, 7, 2},
		{"strip short", TriangleStrip, 2, 0},
		{"strip one", TriangleStrip, 3, 1},
		{"strip quad", TriangleStrip, 4, 2},
		{"strip long", TriangleStrip, 10, 8},
		{"unknown", Topology(9), 9, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.topology.TriangleCount(tt.indices); got != tt.want {
				t.Errorf("TriangleCount(%d) = %d, want %d", tt.indices, got, tt.want)
			}
		})
	}
}

func TestTopologyTriangle(t *testing.T) {
	indices := []uint32{10, 11, 12, 13, 14, 15}

	tests := []struct {
		name     string
		topology Topology
		i        int
		want     [3]uint32
	}{
		{"list first", TriangleList, 0, [3]uint32{10, 11, 12}},
		{"list second", TriangleList, 1, [3]uint32{13, 14, 15}},
		{"strip even", TriangleStrip, 0, [3]uint32{10, 11, 12}},
		{"strip odd swaps", TriangleStrip, 1, [3]uint32{11, 13, 12}},
		{"strip even again", TriangleStrip, 2, [3]uint32{12, 13, 14}},
		{"strip odd again", TriangleStrip, 3, [3]uint32{13, 15, 14}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, c := tt.topology.Triangle(indices, tt.i)
			if got := [3]uint32{a, b, c}; got != tt.want {
				t.Errorf("Triangle(%d) = %v, want %v", tt.i, got, tt.want)
			}
		})
	}
}

func TestExpandStrip(t *testing.T) {
	// The repeated 2 produces two degenerate triangles that are dropped.
	got := ExpandStrip([]uint32{0, 1, 2, 2, 3, 4})
	want := []uint32{0, 1, 2, 2, 4, 3}
	if !slices.Equal(got, want) {
		t.Errorf("ExpandStrip = %v, want %v", got, want)
	}
}

func TestTopologyString(t *testing.T) {
	if TriangleStrip.String() != "TriangleStrip" {
		t.Errorf("String() = %q", TriangleStrip.String())
	}
	if Topology(7).String() != "Topology(7)" {
		t.Errorf("String() = %q", Topology(7).String())
	}
}
