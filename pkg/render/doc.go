// Package render draws map figures as PNG images using gonum/plot.
//
// # Overview
//
// A [Figure] is a grid of map [Panel]s with an optional [ColorBar] on the
// right. Each panel holds layers in one projected CRS (EPSG:3857 in
// practice):
//
//   - point layers, in one colour or coloured per point
//   - filled polygon layers, such as cluster hulls
//   - a raster background supplied by a [BasemapSource]
//
// # Viewport
//
// Panels keep a 1:1 aspect ratio between map units and pixels. The data
// extent is padded by [DefaultPadding] and then widened in one direction to
// the shape of the panel's drawing area. When a basemap is attached, its
// raster is cropped to the viewport and the viewport snapped to the
// cropped pixels.
//
// Axes are hidden; panels carry only a title and the attribution of the
// basemap.
//
//	fig := render.NewFigure(1, 2, render.WithSize(15*vg.Inch, 10*vg.Inch))
//	left := fig.Panel(0, 0)
//	left.Title = "JHM kraj (2021)"
//	left.AddPoints(pts, render.PointStyle{Color: render.Red, Radius: 2})
//	err := fig.WritePNG(ctx, w, source)
package render
