package tiles

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/accimap/pkg/cache"
	"github.com/matzehuels/accimap/pkg/errors"
	"github.com/matzehuels/accimap/pkg/geo"
	"github.com/matzehuels/accimap/pkg/httputil"
)

const half = 20037508.342789244

func TestTileBounds(t *testing.T) {
	tests := []struct {
		tile Tile
		want r2.Box
	}{
		{Tile{0, 0, 0}, r2.Box{Min: r2.Vec{X: -half, Y: -half}, Max: r2.Vec{X: half, Y: half}}},
		{Tile{1, 1, 0}, r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: half, Y: half}}},
		{Tile{1, 0, 1}, r2.Box{Min: r2.Vec{X: -half, Y: -half}, Max: r2.Vec{X: 0, Y: 0}}},
	}
	for _, tt := range tests {
		got := tt.tile.Bounds()
		if !boxNear(got, tt.want, 1e-6) {
			t.Errorf("%v.Bounds() = %v, want %v", tt.tile, got, tt.want)
		}
	}
}

func TestAt(t *testing.T) {
	tests := []struct {
		p    r2.Vec
		z    int
		want Tile
	}{
		{r2.Vec{X: 1, Y: 1}, 1, Tile{1, 1, 0}},
		{r2.Vec{X: -1, Y: -1}, 1, Tile{1, 0, 1}},
		{r2.Vec{X: 2 * half, Y: 2 * half}, 3, Tile{3, 7, 0}},
		{r2.Vec{X: -2 * half, Y: -2 * half}, 3, Tile{3, 0, 7}},
	}
	for _, tt := range tests {
		if got := At(tt.p, tt.z); got != tt.want {
			t.Errorf("At(%v, %d) = %v, want %v", tt.p, tt.z, got, tt.want)
		}
	}
}

func TestCover(t *testing.T) {
	ts, cols := Cover(r2.Box{Min: r2.Vec{X: -1, Y: -1}, Max: r2.Vec{X: 1, Y: 1}}, 1)
	want := []Tile{{1, 0, 0}, {1, 1, 0}, {1, 0, 1}, {1, 1, 1}}
	if cols != 2 || fmt.Sprint(ts) != fmt.Sprint(want) {
		t.Errorf("Cover = %v (cols %d), want %v (cols 2)", ts, cols, want)
	}

	// An extent equal to one tile's bounds needs only that tile.
	one := Tile{2, 1, 1}
	ts, cols = Cover(one.Bounds(), 2)
	if cols != 1 || len(ts) != 1 || ts[0] != one {
		t.Errorf("Cover(tile bounds) = %v (cols %d), want [%v]", ts, cols, one)
	}
	if n := Count(Tile{}.Bounds(), 3); n != 64 {
		t.Errorf("Count(world, 3) = %d, want 64", n)
	}
}

func TestTileURL(t *testing.T) {
	got := OpenStreetMap.TileURL(Tile{Z: 9, X: 281, Y: 175})
	if want := "https://tile.openstreetmap.org/9/281/175.png"; got != want {
		t.Errorf("TileURL = %q, want %q", got, want)
	}
}

func TestProviderValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Provider
		wantErr bool
	}{
		{"osm", OpenStreetMap, false},
		{"no placeholders", Provider{URL: "https://example.com/tile.png", MaxZoom: 5}, true},
		{"zoom too deep", Provider{URL: "https://e.com/{z}/{x}/{y}.png", MaxZoom: 30}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() code = %s, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

// mercatorBox converts a lon/lat rectangle to EPSG:3857.
func mercatorBox(t *testing.T, w, s, e, n float64) r2.Box {
	t.Helper()
	sw, err := geo.Transform(r2.Vec{X: w, Y: s}, geo.WGS84, geo.WebMercator)
	if err != nil {
		t.Fatal(err)
	}
	ne, _ := geo.Transform(r2.Vec{X: e, Y: n}, geo.WGS84, geo.WebMercator)
	return r2.Box{Min: sw, Max: ne}
}

func TestAutoZoom(t *testing.T) {
	region := mercatorBox(t, 15.5, 48.6, 17.6, 49.6)
	tests := []struct {
		name    string
		extent  r2.Box
		maxZoom int
		want    int
	}{
		// lon span 2.1 -> 9, lat span 1.0 -> 10; the coarser wins.
		{"region", region, 19, 9},
		{"clamped", region, 5, 5},
		{"world", mercatorBox(t, -180, -85, 180, 85), 19, 1},
		{"tiny", mercatorBox(t, 16.6, 49.19, 16.6001, 49.1901), 19, 19},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AutoZoom(tt.extent, tt.maxZoom); got != tt.want {
				t.Errorf("AutoZoom() = %d, want %d", got, tt.want)
			}
		})
	}
}

func tilePNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for y := range 256 {
		for x := range 256 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestBasemapOverHTTP(t *testing.T) {
	red := tilePNG(t, color.NRGBA{R: 255, A: 255})
	var mu sync.Mutex
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "image/png")
		w.Write(red)
	}))
	defer server.Close()

	provider := Provider{Name: "test", URL: server.URL + "/{z}/{x}/{y}.png", MaxZoom: 19}
	c, _ := cache.NewFileCache(t.TempDir())
	fetcher := httputil.NewClient(c, time.Hour, nil).WithRetry(1, time.Millisecond)
	client, err := NewClient(provider, fetcher, WithZoom(1))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	extent := r2.Box{Min: r2.Vec{X: -1000, Y: -1000}, Max: r2.Vec{X: 1000, Y: 1000}}
	for range 2 {
		bm, err := client.Basemap(context.Background(), extent)
		if err != nil {
			t.Fatalf("Basemap: %v", err)
		}
		if b := bm.Image.Bounds(); b.Dx() != 512 || b.Dy() != 512 {
			t.Errorf("mosaic is %dx%d, want 512x512", b.Dx(), b.Dy())
		}
		if !bm.Extent.Contains(extent.Min) || !bm.Extent.Contains(extent.Max) {
			t.Errorf("basemap extent %v does not cover %v", bm.Extent, extent)
		}
		if r, _, _, a := bm.Image.At(300, 300).RGBA(); r != 0xffff || a != 0xffff {
			t.Errorf("pixel colour = r %x a %x, want opaque red", r, a)
		}
	}
	if len(paths) != 4 {
		t.Errorf("server saw %d requests, want 4 (second basemap cached): %v", len(paths), paths)
	}
}

type fakeFetcher struct {
	tile    []byte
	missing map[string]bool
	calls   int
}

func (f *fakeFetcher) GetBytes(_ context.Context, key, url string) ([]byte, error) {
	f.calls++
	for k := range f.missing {
		if strings.HasSuffix(key, k) {
			return nil, errors.New(errors.ErrCodeNotFound, "%s: not found", url)
		}
	}
	return f.tile, nil
}

func TestBasemapMissingTile(t *testing.T) {
	f := &fakeFetcher{
		tile:    tilePNG(t, color.NRGBA{G: 255, A: 255}),
		missing: map[string]bool{"1/0/0": true},
	}
	client, _ := NewClient(Provider{Name: "fake", URL: "https://x/{z}/{x}/{y}", MaxZoom: 4}, f, WithZoom(1))

	bm, err := client.Basemap(context.Background(), r2.Box{Min: r2.Vec{X: -1, Y: -1}, Max: r2.Vec{X: 1, Y: 1}})
	if err != nil {
		t.Fatalf("Basemap: %v", err)
	}
	if _, _, _, a := bm.Image.At(10, 10).RGBA(); a != 0 {
		t.Errorf("missing tile alpha = %x, want transparent", a)
	}
	if _, g, _, _ := bm.Image.At(300, 10).RGBA(); g != 0xffff {
		t.Errorf("present tile green = %x, want 0xffff", g)
	}
}

func TestBasemapLimitsTileCount(t *testing.T) {
	f := &fakeFetcher{tile: tilePNG(t, color.White)}
	client, _ := NewClient(Provider{Name: "fake", URL: "https://x/{z}/{x}/{y}", MaxZoom: 19}, f, WithZoom(10))

	world := Tile{}.Bounds()
	bm, err := client.Basemap(context.Background(), world)
	if err != nil {
		t.Fatalf("Basemap: %v", err)
	}
	if bm.Zoom != 3 || f.calls != MaxTiles {
		t.Errorf("zoom %d with %d fetches, want zoom 3 with %d", bm.Zoom, f.calls, MaxTiles)
	}
}

func TestBasemapErrors(t *testing.T) {
	client, _ := NewClient(OpenStreetMap, &fakeFetcher{tile: []byte("not an image")}, WithZoom(2))

	_, err := client.Basemap(context.Background(), r2.Box{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty extent error = %v, want INVALID_INPUT", err)
	}

	_, err = client.Basemap(context.Background(), Tile{2, 1, 1}.Bounds())
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("undecodable tile error = %v, want NETWORK_ERROR", err)
	}
}

func boxNear(a, b r2.Box, tol float64) bool {
	near := func(x, y float64) bool { return x-y <= tol && y-x <= tol }
	return near(a.Min.X, b.Min.X) && near(a.Min.Y, b.Min.Y) && near(a.Max.X, b.Max.X) && near(a.Max.Y, b.Max.Y)
}
