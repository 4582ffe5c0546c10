package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Extent returns the bounding box of pts. The second result is false for an
// empty slice. A single point yields a zero-size box.
func Extent(pts []r2.Vec) (r2.Box, bool) {
	if len(pts) == 0 {
		return r2.Box{}, false
	}
	b := r2.Box{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b, true
}

// Pad grows b by frac of its larger side on every edge. A degenerate box is
// grown by minSize instead so single points still get a visible viewport.
func Pad(b r2.Box, frac, minSize float64) r2.Box {
	size := b.Size()
	margin := math.Max(size.X, size.Y) * frac
	if margin <= 0 {
		margin = minSize / 2
	}
	m := r2.Vec{X: margin, Y: margin}
	return r2.Box{Min: r2.Sub(b.Min, m), Max: r2.Add(b.Max, m)}
}

// Fit expands b around its centre until width/height equals aspect.
// Only one side grows; b is returned unchanged for a non-positive aspect.
func Fit(b r2.Box, aspect float64) r2.Box {
	if aspect <= 0 || math.IsInf(aspect, 0) || math.IsNaN(aspect) {
		return b
	}
	size := b.Size()
	w, h := size.X, size.Y
	if w < h*aspect {
		w = h * aspect
	} else {
		h = w / aspect
	}
	c := b.Center()
	half := r2.Vec{X: w / 2, Y: h / 2}
	return r2.Box{Min: r2.Sub(c, half), Max: r2.Add(c, half)}
}
