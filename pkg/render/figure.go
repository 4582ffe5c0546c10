package render

import (
	"context"
	"image"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/matzehuels/accimap/pkg/errors"
	"github.com/matzehuels/accimap/pkg/geo"
)

// Defaults for [NewFigure].
const (
	DefaultWidth   = 15 * vg.Inch
	DefaultHeight  = 10 * vg.Inch
	DefaultDPI     = 100
	DefaultPadding = 0.05

	// minSpan is the viewport size, in map units, around a single point.
	minSpan = 2000
)

// Raster is a georeferenced background image.
type Raster struct {
	Image       image.Image
	Extent      r2.Box
	Attribution string
}

// BasemapSource supplies a raster covering at least the requested extent.
type BasemapSource interface {
	Basemap(ctx context.Context, extent r2.Box) (Raster, error)
}

// Figure is a grid of map panels rendered into one image.
type Figure struct {
	rows, cols int
	panels     []*Panel
	colorBar   *ColorBar

	width, height vg.Length
	dpi           int
	padding       float64
}

// Option configures a [Figure].
type Option func(*Figure)

// WithSize sets the image size.
func WithSize(w, h vg.Length) Option {
	return func(f *Figure) { f.width, f.height = w, h }
}

// WithDPI sets the output resolution.
func WithDPI(dpi int) Option { return func(f *Figure) { f.dpi = dpi } }

// WithPadding sets the fraction of the data extent added around each panel.
func WithPadding(frac float64) Option { return func(f *Figure) { f.padding = frac } }

// NewFigure creates a figure with rows x cols empty panels.
func NewFigure(rows, cols int, opts ...Option) *Figure {
	f := &Figure{
		rows:    max(rows, 1),
		cols:    max(cols, 1),
		width:   DefaultWidth,
		height:  DefaultHeight,
		dpi:     DefaultDPI,
		padding: DefaultPadding,
	}
	for _, o := range opts {
		o(f)
	}
	f.panels = make([]*Panel, f.rows*f.cols)
	for i := range f.panels {
		f.panels[i] = &Panel{}
	}
	return f
}

// Panel returns the panel at row r, column c.
func (f *Figure) Panel(r, c int) *Panel { return f.panels[r*f.cols+c] }

// Panels returns every panel in row-major order.
func (f *Figure) Panels() []*Panel { return f.panels }

// SetColorBar attaches a colour legend to the right of the panels.
func (f *Figure) SetColorBar(cb *ColorBar) { f.colorBar = cb }

// WritePNG renders the figure. Panels without data share the extent of the
// others. src may be nil to draw without a basemap.
func (f *Figure) WritePNG(ctx context.Context, w io.Writer, src BasemapSource) (int64, error) {
	fallback, ok := f.extent()
	if !ok {
		return 0, errors.New(errors.ErrCodeTooFewPoints, "figure has no data to draw")
	}

	c := vgimg.NewWith(vgimg.UseWH(f.width, f.height), vgimg.UseDPI(f.dpi))
	dc := draw.New(c)

	mapArea := dc
	var barArea draw.Canvas
	if f.colorBar != nil {
		bw := f.width / 10
		mapArea = draw.Crop(dc, 0, -bw, 0, 0)
		barArea = draw.Crop(dc, f.width-bw, 0, 0, 0)
	}

	plots := make([][]*plot.Plot, f.rows)
	for r := range f.rows {
		plots[r] = make([]*plot.Plot, f.cols)
		for col := range f.cols {
			plots[r][col] = newMapPlot(f.Panel(r, col).Title)
		}
	}
	canvases := plot.Align(plots, draw.Tiles{
		Rows: f.rows, Cols: f.cols,
		PadX: vg.Points(12), PadY: vg.Points(12),
		PadTop: vg.Points(6), PadBottom: vg.Points(6),
		PadLeft: vg.Points(6), PadRight: vg.Points(6),
	}, mapArea)

	var dataArea draw.Canvas
	for r := range f.rows {
		for col := range f.cols {
			panel, p, canvas := f.Panel(r, col), plots[r][col], canvases[r][col]

			ext, ok := panel.Extent()
			if !ok {
				ext = fallback
			}
			da := p.DataCanvas(canvas)
			if r == 0 && col == 0 {
				dataArea = da
			}
			view := geo.Fit(geo.Pad(ext, f.padding, minSpan), aspect(da))

			if src != nil {
				raster, err := src.Basemap(ctx, view)
				if err != nil {
					return 0, err
				}
				img, bounds, ok := crop(raster, view)
				if ok {
					view = bounds
					p.Add(newImage(img, bounds))
				}
				if raster.Attribution != "" {
					p.Add(newAttribution(p, raster.Attribution))
				}
			}
			if err := panel.addLayers(p); err != nil {
				return 0, err
			}

			p.X.Min, p.X.Max = view.Min.X, view.Max.X
			p.Y.Min, p.Y.Max = view.Min.Y, view.Max.Y
			p.Draw(canvas)
		}
	}

	if f.colorBar != nil {
		barArea.Min.Y, barArea.Max.Y = dataArea.Min.Y, dataArea.Max.Y
		if err := f.colorBar.draw(barArea); err != nil {
			return 0, err
		}
	}

	return vgimg.PngCanvas{Canvas: c}.WriteTo(w)
}

// SavePNG writes encoded PNG bytes to path after checking the path.
func SavePNG(path string, png []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

// extent is the union of every non-empty panel.
func (f *Figure) extent() (r2.Box, bool) {
	var out r2.Box
	found := false
	for _, p := range f.panels {
		b, ok := p.Extent()
		if !ok {
			continue
		}
		if !found {
			out, found = b, true
			continue
		}
		out.Min.X, out.Min.Y = min(out.Min.X, b.Min.X), min(out.Min.Y, b.Min.Y)
		out.Max.X, out.Max.Y = max(out.Max.X, b.Max.X), max(out.Max.Y, b.Max.Y)
	}
	return out, found
}

func aspect(c draw.Canvas) float64 {
	w, h := c.Max.X-c.Min.X, c.Max.Y-c.Min.Y
	if h <= 0 {
		return 1
	}
	return float64(w / h)
}
