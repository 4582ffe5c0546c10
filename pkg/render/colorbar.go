package render

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/accimap/pkg/errors"
)

// viridisControls are anchor colours of the viridis map, in increasing
// luminance.
var viridisControls = []color.Color{
	color.NRGBA{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	color.NRGBA{R: 0x3b, G: 0x52, B: 0x8b, A: 0xff},
	color.NRGBA{R: 0x21, G: 0x91, B: 0x8c, A: 0xff},
	color.NRGBA{R: 0x5e, G: 0xc9, B: 0x62, A: 0xff},
	color.NRGBA{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
}

// Viridis returns a fresh viridis-like colour map over [min, max]. When the
// range is empty it is widened by one half on each side.
func Viridis(min, max float64) palette.ColorMap {
	cm, err := moreland.NewLuminance(viridisControls)
	if err != nil {
		cm = moreland.Kindlmann()
	}
	if max <= min {
		min, max = min-0.5, max+0.5
	}
	cm.SetMin(min)
	cm.SetMax(max)
	return cm
}

// ColorBar is a vertical legend for a colour map.
type ColorBar struct {
	Map   palette.ColorMap
	Label string
}

// ColorAt returns the map colour for v, clamped to the map range.
func (cb *ColorBar) ColorAt(v float64) color.Color {
	v = min(max(v, cb.Map.Min()), cb.Map.Max())
	c, err := cb.Map.At(v)
	if err != nil {
		return color.Black
	}
	return c
}

func (cb *ColorBar) draw(c draw.Canvas) error {
	if cb.Map == nil || cb.Map.Max() <= cb.Map.Min() {
		return errors.New(errors.ErrCodeRender, "colour bar needs a non-empty range")
	}
	p := plot.New()
	p.Add(&plotter.ColorBar{ColorMap: cb.Map, Vertical: true})
	p.HideX()
	p.Y.Label.Text = cb.Label
	p.Y.Padding = 0

	// Keep the bar narrow and leave room for tick labels on its left.
	w := c.Max.X - c.Min.X
	p.Draw(draw.Crop(c, w*0.45, -w*0.25, 0, 0))
	return nil
}
