package render

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/accimap/pkg/geo"
)

// Colours used by the reports.
var (
	Red      = color.NRGBA{R: 255, A: 255}
	HullGrey = color.NRGBA{R: 128, G: 128, B: 128, A: 128}
)

// PointStyle describes a point layer. When ColorAt is set it overrides
// Color per point.
type PointStyle struct {
	Color   color.Color
	ColorAt func(i int) color.Color
	Radius  vg.Length
}

type pointLayer struct {
	pts   []r2.Vec
	style PointStyle
}

type polygonLayer struct {
	ring []r2.Vec
	fill color.Color
}

// Panel is one map in a [Figure].
type Panel struct {
	Title string

	points   []pointLayer
	polygons []polygonLayer
}

// AddPoints adds a point layer drawn above every polygon.
func (p *Panel) AddPoints(pts []r2.Vec, style PointStyle) {
	if style.Radius == 0 {
		style.Radius = 2
	}
	if style.Color == nil {
		style.Color = color.Black
	}
	p.points = append(p.points, pointLayer{pts: pts, style: style})
}

// AddPolygon adds a filled ring. Polygons are drawn in insertion order.
func (p *Panel) AddPolygon(ring []r2.Vec, fill color.Color) {
	p.polygons = append(p.polygons, polygonLayer{ring: ring, fill: fill})
}

// NumPoints returns the number of points over all layers.
func (p *Panel) NumPoints() int {
	var n int
	for _, l := range p.points {
		n += len(l.pts)
	}
	return n
}

// NumPolygons returns the number of polygon layers.
func (p *Panel) NumPolygons() int { return len(p.polygons) }

// Extent returns the bounding box of every layer. ok is false for an empty
// panel.
func (p *Panel) Extent() (r2.Box, bool) {
	var all []r2.Vec
	for _, l := range p.points {
		all = append(all, l.pts...)
	}
	for _, l := range p.polygons {
		all = append(all, l.ring...)
	}
	return geo.Extent(all)
}
