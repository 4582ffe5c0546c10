package report

import (
	"compress/gzip"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/accimap/pkg/accident"
	"github.com/matzehuels/accimap/pkg/errors"
	"github.com/matzehuels/accimap/pkg/observability"
	"github.com/matzehuels/accimap/pkg/render"
)

type recordingViewer struct {
	titles []string
	sizes  []int
}

func (v *recordingViewer) Show(_ context.Context, title string, png []byte) error {
	v.titles = append(v.titles, title)
	v.sizes = append(v.sizes, len(png))
	return nil
}

func testContext(v Viewer) *Context {
	return &Context{Viewer: v, Width: 4 * vg.Inch, Height: 3 * vg.Inch, DPI: 40}
}

func rec(row int, d, e float64, date, region string, cause, alcohol int) accident.Record {
	return accident.Record{
		Row: row, D: d, E: e, RawDate: date, Region: region,
		Cause: cause, Alcohol: alcohol, ID: fmt.Sprintf("id-%d", row),
	}
}

func build(t *testing.T, recs []accident.Record) *accident.GeoFrame {
	t.Helper()
	frame, _, err := accident.Build(recs, accident.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return frame
}

func regionalFrame(t *testing.T) *accident.GeoFrame {
	return build(t, []accident.Record{
		rec(0, -598000, -1160000, "2021-05-01", "JHM", 4, 0),
		rec(1, -597000, -1161000, "2021-05-01", "JHM", 4, 0),
		rec(2, -596000, -1162000, "2022-06-01", "JHM", 4, 0),
		rec(3, -595000, -1163000, "2022-06-01", "JHM", 4, 0),
		rec(4, -594000, -1164000, "2022-06-01", "PHA", 4, 0), // other region
		rec(5, -593000, -1165000, "2021-06-01", "JHM", 2, 0), // other cause
		rec(6, -592000, -1166000, "2020-06-01", "JHM", 4, 0), // other year
	})
}

func TestRenderRegionalYears(t *testing.T) {
	viewer := &recordingViewer{}
	opts := DefaultRegionalOptions()
	opts.Path = filepath.Join(t.TempDir(), "geo1.png")
	opts.Show = true

	res, err := RenderRegionalYears(context.Background(), testContext(viewer), regionalFrame(t), opts)
	if err != nil {
		t.Fatalf("RenderRegionalYears: %v", err)
	}

	if len(res.Panels) != 2 {
		t.Fatalf("got %d panels, want 2", len(res.Panels))
	}
	for i, want := range []string{"JHM kraj (2021)", "JHM kraj (2022)"} {
		if res.Panels[i].Title != want {
			t.Errorf("panel %d title = %q, want %q", i, res.Panels[i].Title, want)
		}
		if res.Panels[i].Points != 2 {
			t.Errorf("panel %d has %d points, want 2", i, res.Panels[i].Points)
		}
	}

	info, err := os.Stat(opts.Path)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if int(info.Size()) != res.Size || res.Path != opts.Path {
		t.Errorf("result = %+v, file size %d", res, info.Size())
	}
	if !res.Shown || len(viewer.sizes) != 1 || viewer.sizes[0] != res.Size {
		t.Errorf("viewer calls = %v, want one call with %d bytes", viewer.sizes, res.Size)
	}
}

func TestRenderRegionalYearsNoSaveNoShow(t *testing.T) {
	viewer := &recordingViewer{}
	opts := DefaultRegionalOptions()
	opts.Output = Output{}

	res, err := RenderRegionalYears(context.Background(), testContext(viewer), regionalFrame(t), opts)
	if err != nil {
		t.Fatalf("RenderRegionalYears: %v", err)
	}
	if res.Path != "" || res.Shown || len(viewer.titles) != 0 {
		t.Errorf("figure saved or shown without being asked: %+v", res)
	}
	if res.Size == 0 {
		t.Error("figure was not rendered")
	}
}

func TestPanelTitle(t *testing.T) {
	tests := []struct {
		tmpl string
		want string
	}{
		{DefaultRegionalTitle, "JHM kraj (2021)"},
		{"{year}", "2021"},
		{"{region} {region} {year}", "JHM JHM 2021"},
		{"100% %s %d {year}", "100% %s %d 2021"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PanelTitle(tt.tmpl, "JHM", 2021); got != tt.want {
			t.Errorf("PanelTitle(%q) = %q, want %q", tt.tmpl, got, tt.want)
		}
	}
}

// extentSource records the requested extents and covers each with a
// single-colour raster.
type extentSource struct {
	requests []r2.Box
}

func (s *extentSource) Basemap(_ context.Context, extent r2.Box) (render.Raster, error) {
	s.requests = append(s.requests, extent)
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return render.Raster{Image: img, Extent: extent}, nil
}

func TestRenderRegionalYearsTitleAndPadding(t *testing.T) {
	opts := DefaultRegionalOptions()
	opts.TitleTemplate = "Srážky se zvěří %d%% {year}"
	opts.Output = Output{}

	views := func(padding float64) (*Result, []r2.Box) {
		src := &extentSource{}
		rc := testContext(nil)
		rc.Basemap = src
		rc.Padding = padding
		res, err := RenderRegionalYears(context.Background(), rc, regionalFrame(t), opts)
		if err != nil {
			t.Fatalf("RenderRegionalYears: %v", err)
		}
		return res, src.requests
	}

	res, def := views(0)
	for i, want := range []string{"Srážky se zvěří %d%% 2021", "Srážky se zvěří %d%% 2022"} {
		if res.Panels[i].Title != want {
			t.Errorf("panel %d title = %q, want %q", i, res.Panels[i].Title, want)
		}
	}

	_, wide := views(0.5)
	if len(def) != 2 || len(wide) != 2 {
		t.Fatalf("basemap requests = %d, %d; want 2 each", len(def), len(wide))
	}
	for i := range def {
		d, w := def[i].Size(), wide[i].Size()
		if w.X <= d.X || w.Y <= d.Y {
			t.Errorf("panel %d: padded view %+v not larger than default %+v", i, w, d)
		}
	}
}

func TestRenderRegionalYearsNothingSelected(t *testing.T) {
	opts := DefaultRegionalOptions()
	opts.Region = "ZLK"
	opts.Output = Output{}

	_, err := RenderRegionalYears(context.Background(), testContext(nil), regionalFrame(t), opts)
	if !errors.Is(err, errors.ErrCodeTooFewPoints) {
		t.Errorf("error = %v, want TOO_FEW_POINTS", err)
	}
}

// clusterFrame has 24 alcohol-related JHM accidents in two tight groups of
// twelve and a few rows the filter must drop.
func clusterFrame(t *testing.T) *accident.GeoFrame {
	var recs []accident.Record
	for i := range 12 {
		recs = append(recs, rec(len(recs), -598000+float64(i%4)*15, -1160000+float64(i/4)*20, "2021-01-01", "JHM", 1, 4+i%3))
	}
	for i := range 12 {
		recs = append(recs, rec(len(recs), -560000+float64(i%3)*25, -1180000+float64(i/3)*10, "2022-01-01", "JHM", 1, 9))
	}
	recs = append(recs,
		rec(len(recs), -570000, -1170000, "2022-01-01", "JHM", 1, 3),
		rec(len(recs), -570000, -1170000, "2022-01-01", "PHA", 1, 9),
	)
	return build(t, recs)
}

func TestRenderClusters(t *testing.T) {
	viewer := &recordingViewer{}
	opts := DefaultClusterOptions()
	opts.Path = filepath.Join(t.TempDir(), "geo2.png")
	opts.Show = true

	res, err := RenderClusters(context.Background(), testContext(viewer), clusterFrame(t), opts)
	if err != nil {
		t.Fatalf("RenderClusters: %v", err)
	}

	if len(res.Clusters) != 12 {
		t.Fatalf("got %d clusters, want 12", len(res.Clusters))
	}
	total := 0
	seen := make(map[int]bool)
	for _, c := range res.Clusters {
		total += c.Count
		if c.Count != len(c.Members) || c.Count != c.Points.NumPoints() {
			t.Errorf("cluster %d count %d, members %d, points %d", c.Label, c.Count, len(c.Members), c.Points.NumPoints())
		}
		if c.Points.SRID() != 3857 {
			t.Errorf("cluster %d geometry srid = %d, want 3857", c.Label, c.Points.SRID())
		}
		seen[c.Label] = true
	}
	if total != 24 {
		t.Errorf("cluster counts sum to %d, want 24", total)
	}
	if len(seen) != 12 {
		t.Errorf("got %d distinct labels, want 12", len(seen))
	}

	panel := res.Panels[0]
	if panel.Title != DefaultClusterTitle || panel.Points != 24 || panel.Polygons != 12 {
		t.Errorf("panel = %+v, want title %q with 24 points and 12 hulls", panel, DefaultClusterTitle)
	}
	if len(viewer.titles) != 1 || viewer.titles[0] != DefaultClusterTitle {
		t.Errorf("viewer titles = %v", viewer.titles)
	}
	if _, err := os.Stat(opts.Path); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRenderClustersTooFewPoints(t *testing.T) {
	opts := DefaultClusterOptions()
	opts.Output = Output{}
	_, err := RenderClusters(context.Background(), testContext(nil), regionalFrame(t), opts)
	if !errors.Is(err, errors.ErrCodeTooFewPoints) {
		t.Errorf("error = %v, want TOO_FEW_POINTS", err)
	}
}

type stageRecorder struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	stages  []string
	figures []string
}

func (r *stageRecorder) OnStageComplete(_ context.Context, stage string, _ int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *stageRecorder) OnFigureWritten(_ context.Context, path string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.figures = append(r.figures, filepath.Base(path))
}

func writeCSVGz(t *testing.T, frame *accident.GeoFrame, extra ...accident.GeoRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accidents.csv.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	fmt.Fprintln(gz, "p1,d,e,p2a,region,p10,p11")
	for _, r := range append(frame.Records, extra...) {
		fmt.Fprintf(gz, "%s,%.2f,%.2f,%s,%s,%d,%d\n", r.ID, r.D, r.E, r.RawDate, r.Region, r.Cause, r.Alcohol)
	}
	fmt.Fprintln(gz, "missing,,-1160000,2021-05-01,JHM,4,9")
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	hooks := &stageRecorder{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	// Wildlife accidents of 2021/2022 plus the alcohol clusters.
	var extra []accident.GeoRecord
	extra = append(extra, regionalFrame(t).Records...)
	input := writeCSVGz(t, clusterFrame(t), extra...)

	dir := t.TempDir()
	opts := DefaultRunOptions()
	opts.Input = input
	opts.Regional.Path = filepath.Join(dir, "geo1.png")
	opts.Cluster.Path = filepath.Join(dir, "geo2.png")

	viewer := &recordingViewer{}
	sum, err := Run(context.Background(), testContext(viewer), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Stats.MissingCoords != 1 {
		t.Errorf("MissingCoords = %d, want 1", sum.Stats.MissingCoords)
	}
	if got := sum.Regional.Panels[0].Points + sum.Regional.Panels[1].Points; got != 4 {
		t.Errorf("regional figure has %d points, want 4", got)
	}
	if len(sum.Cluster.Clusters) != 12 {
		t.Errorf("cluster figure has %d clusters, want 12", len(sum.Cluster.Clusters))
	}
	if len(viewer.titles) != 2 {
		t.Errorf("viewer called %d times, want 2", len(viewer.titles))
	}

	wantStages := []string{"load", "build", "regional", "cluster"}
	if fmt.Sprint(hooks.stages) != fmt.Sprint(wantStages) {
		t.Errorf("stages = %v, want %v", hooks.stages, wantStages)
	}
	if fmt.Sprint(hooks.figures) != "[geo1.png geo2.png]" {
		t.Errorf("figures = %v", hooks.figures)
	}
}

func TestRunMissingInput(t *testing.T) {
	opts := DefaultRunOptions()
	opts.Input = filepath.Join(t.TempDir(), "nope.csv.gz")
	_, err := Run(context.Background(), testContext(nil), opts)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}
