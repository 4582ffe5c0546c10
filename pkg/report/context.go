package report

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/accimap/pkg/render"
	"github.com/matzehuels/accimap/pkg/tiles"
)

// Viewer displays a rendered figure and returns once the user is done
// with it.
type Viewer interface {
	Show(ctx context.Context, title string, png []byte) error
}

// Context is the rendering environment shared by the reports.
type Context struct {
	Logger  *log.Logger
	Basemap render.BasemapSource // nil draws without a background
	Viewer  Viewer               // nil disables display

	Width, Height vg.Length
	DPI           int
	Padding       float64 // fraction of the data extent; 0 keeps the default
}

func (rc *Context) logger() *log.Logger {
	if rc == nil || rc.Logger == nil {
		return log.New(io.Discard)
	}
	return rc.Logger
}

func (rc *Context) figure(rows, cols int) *render.Figure {
	var opts []render.Option
	if rc != nil && rc.Width > 0 && rc.Height > 0 {
		opts = append(opts, render.WithSize(rc.Width, rc.Height))
	}
	if rc != nil && rc.DPI > 0 {
		opts = append(opts, render.WithDPI(rc.DPI))
	}
	if rc != nil && rc.Padding > 0 {
		opts = append(opts, render.WithPadding(rc.Padding))
	}
	return render.NewFigure(rows, cols, opts...)
}

func (rc *Context) basemap() render.BasemapSource {
	if rc == nil {
		return nil
	}
	return rc.Basemap
}

// TileSource adapts a tile client to [render.BasemapSource].
type TileSource struct {
	Client *tiles.Client
}

// Basemap fetches and stitches the tiles covering extent.
func (s TileSource) Basemap(ctx context.Context, extent r2.Box) (render.Raster, error) {
	bm, err := s.Client.Basemap(ctx, extent)
	if err != nil {
		return render.Raster{}, err
	}
	return render.Raster{Image: bm.Image, Extent: bm.Extent, Attribution: bm.Attribution}, nil
}
