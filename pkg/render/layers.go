package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/accimap/pkg/errors"
)

func newMapPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(6)
	p.HideAxes()
	p.X.Padding, p.Y.Padding = 0, 0
	return p
}

// addLayers adds polygons first so points stay visible on top. Rings of
// two vertices are drawn as segments and single vertices are skipped.
func (p *Panel) addLayers(plt *plot.Plot) error {
	for _, l := range p.polygons {
		switch len(l.ring) {
		case 0, 1:
			continue
		case 2:
			line, err := plotter.NewLine(toXYs(l.ring))
			if err != nil {
				return errors.Wrap(errors.ErrCodeRender, err, "polygon layer")
			}
			line.LineStyle.Color = l.fill
			line.LineStyle.Width = vg.Points(1)
			plt.Add(line)
			continue
		}
		poly, err := plotter.NewPolygon(toXYs(l.ring))
		if err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "polygon layer")
		}
		poly.Color = l.fill
		poly.LineStyle.Color = l.fill
		poly.LineStyle.Width = vg.Points(0.5)
		plt.Add(poly)
	}
	for _, l := range p.points {
		if len(l.pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(toXYs(l.pts))
		if err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "point layer")
		}
		style := l.style
		s.GlyphStyle = vgdraw.GlyphStyle{Color: style.Color, Radius: style.Radius, Shape: vgdraw.CircleGlyph{}}
		if style.ColorAt != nil {
			s.GlyphStyleFunc = func(i int) vgdraw.GlyphStyle {
				return vgdraw.GlyphStyle{Color: style.ColorAt(i), Radius: style.Radius, Shape: vgdraw.CircleGlyph{}}
			}
		}
		plt.Add(s)
	}
	return nil
}

func toXYs(pts []r2.Vec) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i].X, xys[i].Y = p.X, p.Y
	}
	return xys
}

func newImage(img image.Image, b r2.Box) *plotter.Image {
	return plotter.NewImage(img, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}

// crop cuts the part of r covering view, widened to whole pixels. The
// returned box is the exact extent of the cropped pixels. ok is false when
// the raster does not overlap view.
func crop(r Raster, view r2.Box) (image.Image, r2.Box, bool) {
	if r.Image == nil || r.Extent.Empty() {
		return nil, r2.Box{}, false
	}
	ib := r.Image.Bounds()
	w, h := ib.Dx(), ib.Dy()
	sx := (r.Extent.Max.X - r.Extent.Min.X) / float64(w)
	sy := (r.Extent.Max.Y - r.Extent.Min.Y) / float64(h)

	x0 := clampInt(int(math.Floor((view.Min.X-r.Extent.Min.X)/sx)), 0, w)
	x1 := clampInt(int(math.Ceil((view.Max.X-r.Extent.Min.X)/sx)), 0, w)
	y0 := clampInt(int(math.Floor((r.Extent.Max.Y-view.Max.Y)/sy)), 0, h)
	y1 := clampInt(int(math.Ceil((r.Extent.Max.Y-view.Min.Y)/sy)), 0, h)
	if x1 <= x0 || y1 <= y0 {
		return nil, r2.Box{}, false
	}

	rect := image.Rect(x0, y0, x1, y1).Add(ib.Min)
	out := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), r.Image, rect.Min, draw.Src)

	bounds := r2.Box{
		Min: r2.Vec{X: r.Extent.Min.X + float64(x0)*sx, Y: r.Extent.Max.Y - float64(y1)*sy},
		Max: r2.Vec{X: r.Extent.Min.X + float64(x1)*sx, Y: r.Extent.Max.Y - float64(y0)*sy},
	}
	return out, bounds, true
}

func clampInt(v, lo, hi int) int { return max(lo, min(v, hi)) }

// attribution writes the basemap credit in the bottom-right corner of the
// data area.
type attribution struct {
	text  string
	style vgdraw.TextStyle
}

func newAttribution(p *plot.Plot, text string) attribution {
	style := p.Title.TextStyle
	style.Font.Size = vg.Points(7)
	style.Color = color.Gray{Y: 0x40}
	style.XAlign = vgdraw.XRight
	style.YAlign = vgdraw.YBottom
	return attribution{text: text, style: style}
}

func (a attribution) Plot(c vgdraw.Canvas, _ *plot.Plot) {
	c.FillText(a.style, vg.Point{X: c.Max.X - vg.Points(3), Y: c.Min.Y + vg.Points(3)}, a.text)
}
