package render

import "scrollcal/internal/geom"

// slice describes one of the three bands an edge-stretch pad is built
// from: a region of the source, how far it is stretched, and where the
// stretched band lands.
type slice struct {
	start, length float64
	scale, offset float64
}

func edgeSlices(extent, near, far float64) [3]slice {
	return [3]slice{
		{start: 0, length: 1, scale: near, offset: 0},
		{start: 0, length: extent, scale: 1, offset: near},
		{start: extent - 1, length: 1, scale: far, offset: near + extent},
	}
}

// PadVertical grows r by above/below pixels, filling the new space by
// stretching the first and last pixel rows of r.
func PadVertical(r Renderable, above, below float64) Renderable {
	b := r.Bounds()
	g := NewGroup()
	for _, sl := range edgeSlices(b.H, above, below) {
		if sl.scale <= 0 {
			continue
		}
		band := ClipTo(r, geom.R(0, sl.start, b.W, sl.length))
		g.Push(Offset(ScaleBy(band, 1, sl.scale), 0, sl.offset))
	}
	return g
}

// PadSides grows r by left/right pixels, stretching its outermost columns.
func PadSides(r Renderable, left, right float64) Renderable {
	b := r.Bounds()
	g := NewGroup()
	for _, sl := range edgeSlices(b.W, left, right) {
		if sl.scale <= 0 {
			continue
		}
		band := ClipTo(r, geom.R(sl.start, 0, sl.length, b.H))
		g.Push(Offset(ScaleBy(band, sl.scale, 1), sl.offset, 0))
	}
	return g
}
