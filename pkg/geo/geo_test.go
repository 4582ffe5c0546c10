package geo

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/accimap/pkg/errors"
)

func near(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestKrovakForwardReference(t *testing.T) {
	// Worked example for the Krovak projection on the Bessel ellipsoid.
	lat := rad(50 + 12.0/60 + 32.442/3600)
	lon := rad(16 + 50.0/60 + 59.179/3600)

	e, n := krovakForward(lat, lon)
	if math.Abs(e-(-568990.997)) > 0.5 {
		t.Errorf("easting = %.3f, want -568990.997", e)
	}
	if math.Abs(n-(-1050538.643)) > 0.5 {
		t.Errorf("northing = %.3f, want -1050538.643", n)
	}
}

func TestKrovakRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"prague", 50.0875, 14.4213},
		{"brno", 49.1951, 16.6068},
		{"ostrava", 49.8209, 18.2625},
		{"cheb", 50.0796, 12.3739},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, n := krovakForward(rad(tt.lat), rad(tt.lon))
			lat, lon := krovakInverse(e, n)
			if math.Abs(deg(lat)-tt.lat) > 1e-9 || math.Abs(deg(lon)-tt.lon) > 1e-9 {
				t.Errorf("round trip = (%.10f, %.10f), want (%.10f, %.10f)", deg(lat), deg(lon), tt.lat, tt.lon)
			}
		})
	}
}

func TestTransformSJTSKToWGS84(t *testing.T) {
	// Old Town Square, Prague.
	wgs := r2.Vec{X: 14.4213, Y: 50.0875}

	grid, err := Transform(wgs, WGS84, SJTSK)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if !near(grid, r2.Vec{X: -742800, Y: -1043100}, 5000) {
		t.Errorf("Transform() = %+v, want near (-742800, -1043100)", grid)
	}
	if !CzechBounds.Contains(grid) {
		t.Errorf("Prague %+v should fall inside CzechBounds", grid)
	}

	back, err := Transform(grid, SJTSK, WGS84)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if !near(back, wgs, 1e-7) {
		t.Errorf("round trip = %+v, want %+v", back, wgs)
	}
}

func TestTransformWebMercator(t *testing.T) {
	tests := []struct {
		name string
		in   r2.Vec
		want r2.Vec
	}{
		{"origin", r2.Vec{}, r2.Vec{}},
		{"antimeridian", r2.Vec{X: 180}, r2.Vec{X: MercatorHalfWorld}},
		{"max latitude", r2.Vec{Y: MaxMercatorLat}, r2.Vec{Y: MercatorHalfWorld}},
		{"brno", r2.Vec{X: 16.6068, Y: 49.1951}, r2.Vec{X: 1848660, Y: 6308031}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transform(tt.in, WGS84, WebMercator)
			if err != nil {
				t.Fatalf("Transform() error: %v", err)
			}
			if !near(got, tt.want, 200) {
				t.Errorf("Transform() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTransformChainRoundTrip(t *testing.T) {
	grid := r2.Vec{X: -598000, Y: -1160000}

	merc, err := Transform(grid, SJTSK, WebMercator)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	back, err := Transform(merc, WebMercator, SJTSK)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if !near(back, grid, 0.01) {
		t.Errorf("round trip = %+v, want %+v", back, grid)
	}
}

func TestTransformUnsupported(t *testing.T) {
	_, err := Transform(r2.Vec{}, "EPSG:2065", WGS84)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Transform() error = %v, want UNSUPPORTED", err)
	}
	if _, err := Transformer(WGS84, "EPSG:0"); err == nil {
		t.Error("Transformer() should reject unknown target")
	}
}

func TestTransformIdentity(t *testing.T) {
	p := r2.Vec{X: 1, Y: 2}
	got, err := Transform(p, SJTSK, SJTSK)
	if err != nil || got != p {
		t.Errorf("Transform() = %+v, %v; want %+v, nil", got, err, p)
	}
}

func TestCRSSRID(t *testing.T) {
	tests := []struct {
		crs  CRS
		want int
	}{
		{SJTSK, 5514},
		{WGS84, 4326},
		{WebMercator, 3857},
		{"EPSG:1", 0},
	}
	for _, tt := range tests {
		if got := tt.crs.SRID(); got != tt.want {
			t.Errorf("%s.SRID() = %d, want %d", tt.crs, got, tt.want)
		}
	}
}

func TestExtentPadFit(t *testing.T) {
	if _, ok := Extent(nil); ok {
		t.Error("Extent(nil) should report false")
	}

	b, ok := Extent([]r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 4}, {X: 5, Y: -2}})
	if !ok {
		t.Fatal("Extent() reported empty")
	}
	if b.Min != (r2.Vec{X: 0, Y: -2}) || b.Max != (r2.Vec{X: 10, Y: 4}) {
		t.Errorf("Extent() = %+v", b)
	}

	p := Pad(b, 0.1, 100)
	if p.Min != (r2.Vec{X: -1, Y: -3}) || p.Max != (r2.Vec{X: 11, Y: 5}) {
		t.Errorf("Pad() = %+v", p)
	}

	single, _ := Extent([]r2.Vec{{X: 3, Y: 3}})
	if got := Pad(single, 0.1, 100).Size(); got != (r2.Vec{X: 100, Y: 100}) {
		t.Errorf("Pad() of a point has size %+v, want 100x100", got)
	}

	sq := Fit(b, 1)
	if size := sq.Size(); size.X != size.Y || size.X != 10 {
		t.Errorf("Fit(b, 1) size = %+v, want 10x10", size)
	}
	if sq.Center() != b.Center() {
		t.Errorf("Fit(b, 1) moved the centre: %+v != %+v", sq.Center(), b.Center())
	}
}

func TestFit(t *testing.T) {
	b := r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 10, Y: 10}}
	tests := []struct {
		aspect float64
		want   r2.Vec
	}{
		{2, r2.Vec{X: 20, Y: 10}},
		{0.5, r2.Vec{X: 10, Y: 20}},
		{1, r2.Vec{X: 10, Y: 10}},
		{0, r2.Vec{X: 10, Y: 10}},
	}
	for _, tt := range tests {
		got := Fit(b, tt.aspect)
		if got.Size() != tt.want {
			t.Errorf("Fit(%v) size = %+v, want %+v", tt.aspect, got.Size(), tt.want)
		}
		if got.Center() != b.Center() {
			t.Errorf("Fit(%v) moved the centre to %+v", tt.aspect, got.Center())
		}
	}
}
