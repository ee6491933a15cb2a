package render

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// drawTiles bins the set-up triangles into row bands and rasterizes the
// bands in parallel. Each band is owned by one goroutine and walks its
// triangles in submission order, so the output does not depend on the
// worker count. It returns the number of fragments written.
func (r *Rasterizer) drawTiles(shade FragmentFunc) int {
	th := r.TileHeight
	if th <= 0 {
		th = DefaultTileHeight
	}
	numTiles := (r.fb.Height + th - 1) / th

	if cap(r.bins) < numTiles {
		r.bins = make([][]int32, numTiles)
	}
	r.bins = r.bins[:numTiles]
	for i := range r.bins {
		r.bins[i] = r.bins[i][:0]
	}
	for i := range r.tris {
		tri := &r.tris[i]
		for t := tri.minY / th; t <= tri.maxY/th; t++ {
			r.bins[t] = append(r.bins[t], int32(i))
		}
	}

	if cap(r.counts) < numTiles {
		r.counts = make([]int, numTiles)
	}
	r.counts = r.counts[:numTiles]
	clear(r.counts)

	workers := r.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	if workers == 1 || numTiles == 1 {
		for t := range numTiles {
			r.counts[t] = r.drawTile(t, th, shade)
		}
	} else {
		// Tiles cannot fail; the group only bounds concurrency.
		var g errgroup.Group
		g.SetLimit(workers)
		for t := range numTiles {
			if len(r.bins[t]) == 0 {
				continue
			}
			g.Go(func() error {
				r.counts[t] = r.drawTile(t, th, shade)
				return nil
			})
		}
		_ = g.Wait()
	}

	total := 0
	for _, c := range r.counts {
		total += c
	}
	return total
}

// drawTile rasterizes every triangle binned into tile t, clipped to the
// tile's rows.
func (r *Rasterizer) drawTile(t, th int, shade FragmentFunc) int {
	top := t * th
	bottom := min(top+th, r.fb.Height) - 1

	written := 0
	for _, idx := range r.bins[t] {
		tri := &r.tris[idx]
		y0 := max(tri.minY, top)
		y1 := min(tri.maxY, bottom)
		if y0 > y1 {
			continue
		}
		written += r.scan(tri, y0, y1, shade)
	}
	return written
}
