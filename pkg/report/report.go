package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/accimap/pkg/accident"
	"github.com/matzehuels/accimap/pkg/observability"
	"github.com/matzehuels/accimap/pkg/render"
)

// Output says where a figure goes. An empty Path skips saving.
type Output struct {
	Path string
	Show bool
}

// PanelSummary describes one drawn panel.
type PanelSummary struct {
	Title    string
	Points   int
	Polygons int
}

// Result describes a rendered figure.
type Result struct {
	Title  string
	Panels []PanelSummary
	Path   string // empty when not saved
	Size   int    // encoded PNG size in bytes
	Shown  bool
}

// Prepare loads the accident table at path and builds its geometry.
func Prepare(ctx context.Context, rc *Context, path string) (*accident.GeoFrame, accident.BuildStats, error) {
	hooks := observability.Pipeline()
	logger := rc.logger()

	hooks.OnStageStart(ctx, "load")
	start := time.Now()
	records, err := accident.Load(path)
	hooks.OnStageComplete(ctx, "load", len(records), time.Since(start), err)
	if err != nil {
		return nil, accident.BuildStats{}, err
	}
	logger.Debug("table loaded", "path", path, "rows", len(records))

	hooks.OnStageStart(ctx, "build")
	start = time.Now()
	frame, stats, err := accident.Build(records, accident.BuildOptions{Logger: logger})
	rows := 0
	if frame != nil {
		rows = frame.Len()
	}
	hooks.OnStageComplete(ctx, "build", rows, time.Since(start), err)
	if err != nil {
		return nil, stats, err
	}
	return frame, stats, nil
}

// finish encodes fig once and saves and/or shows it.
func finish(ctx context.Context, rc *Context, fig *render.Figure, title string, out Output) (*Result, error) {
	var buf bytes.Buffer
	if _, err := fig.WritePNG(ctx, &buf, rc.basemap()); err != nil {
		return nil, err
	}

	res := &Result{Title: title, Size: buf.Len()}
	for _, p := range fig.Panels() {
		res.Panels = append(res.Panels, PanelSummary{Title: p.Title, Points: p.NumPoints(), Polygons: p.NumPolygons()})
	}

	if out.Path != "" {
		if err := render.SavePNG(out.Path, buf.Bytes()); err != nil {
			return nil, err
		}
		res.Path = out.Path
		observability.Pipeline().OnFigureWritten(ctx, out.Path, buf.Len())
		rc.logger().Info("figure saved", "path", out.Path)
	}

	if out.Show {
		if rc == nil || rc.Viewer == nil {
			rc.logger().Debug("no viewer configured, not showing figure", "title", title)
			return res, nil
		}
		if err := rc.Viewer.Show(ctx, title, buf.Bytes()); err != nil {
			return nil, fmt.Errorf("show %q: %w", title, err)
		}
		res.Shown = true
	}
	return res, nil
}

// stage wraps fn with pipeline hooks.
func stage(ctx context.Context, name string, fn func() (*Result, int, error)) (*Result, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	res, rows, err := fn()
	hooks.OnStageComplete(ctx, name, rows, time.Since(start), err)
	return res, err
}
