package tiles

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/accimap/pkg/errors"
	"github.com/matzehuels/accimap/pkg/geo"
)

// Provider describes an XYZ tile service.
type Provider struct {
	Name        string
	URL         string // template with {z}, {x} and {y}
	MaxZoom     int
	Attribution string
}

// OpenStreetMap is the standard OSM Mapnik tile layer.
var OpenStreetMap = Provider{
	Name:        "osm",
	URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
	MaxZoom:     19,
	Attribution: "© OpenStreetMap contributors",
}

// Validate checks the URL template and zoom limit.
func (p Provider) Validate() error {
	if err := errors.ValidateTileURL(p.URL); err != nil {
		return err
	}
	if p.MaxZoom < 0 || p.MaxZoom > MaxZoom {
		return errors.New(errors.ErrCodeInvalidConfig, "max zoom %d out of range [0, %d]", p.MaxZoom, MaxZoom)
	}
	return nil
}

// MaxZoom is the deepest zoom level any provider is assumed to serve.
const MaxZoom = 22

// Tile addresses one tile.
type Tile struct {
	Z, X, Y int
}

// TileURL expands the provider template for t.
func (p Provider) TileURL(t Tile) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(t.Z),
		"{x}", strconv.Itoa(t.X),
		"{y}", strconv.Itoa(t.Y),
	).Replace(p.URL)
}

// String returns "z/x/y".
func (t Tile) String() string {
	return strconv.Itoa(t.Z) + "/" + strconv.Itoa(t.X) + "/" + strconv.Itoa(t.Y)
}

// span returns the side length of a tile at zoom z in metres.
func span(z int) float64 {
	return 2 * geo.MercatorHalfWorld / float64(int(1)<<z)
}

// Bounds returns the EPSG:3857 extent of t.
func (t Tile) Bounds() r2.Box {
	s := span(t.Z)
	minX := -geo.MercatorHalfWorld + float64(t.X)*s
	maxY := geo.MercatorHalfWorld - float64(t.Y)*s
	return r2.Box{
		Min: r2.Vec{X: minX, Y: maxY - s},
		Max: r2.Vec{X: minX + s, Y: maxY},
	}
}

// At returns the tile containing the EPSG:3857 point p at zoom z.
// Points outside the world are clamped to the edge tiles.
func At(p r2.Vec, z int) Tile {
	s := span(z)
	last := int(1)<<z - 1
	x := int(math.Floor((p.X + geo.MercatorHalfWorld) / s))
	y := int(math.Floor((geo.MercatorHalfWorld - p.Y) / s))
	return Tile{Z: z, X: clamp(x, 0, last), Y: clamp(y, 0, last)}
}

// Cover returns the tiles intersecting extent at zoom z, row by row from
// the north-west corner, along with the number of columns.
func Cover(extent r2.Box, z int) (tiles []Tile, cols int) {
	nw, se := corners(extent, z)
	cols = se.X - nw.X + 1
	for y := nw.Y; y <= se.Y; y++ {
		for x := nw.X; x <= se.X; x++ {
			tiles = append(tiles, Tile{Z: z, X: x, Y: y})
		}
	}
	return tiles, cols
}

// Count returns len(Cover(extent, z)) without building the slice.
func Count(extent r2.Box, z int) int {
	nw, se := corners(extent, z)
	return (se.X - nw.X + 1) * (se.Y - nw.Y + 1)
}

func corners(extent r2.Box, z int) (nw, se Tile) {
	nw = At(r2.Vec{X: extent.Min.X, Y: extent.Max.Y}, z)
	se = At(r2.Vec{X: extent.Max.X, Y: extent.Min.Y}, z)

	// An edge that lands exactly on a tile border belongs to the previous tile.
	if se.X > nw.X && se.Bounds().Min.X == extent.Max.X {
		se.X--
	}
	if se.Y > nw.Y && se.Bounds().Max.Y == extent.Min.Y {
		se.Y--
	}
	return nw, se
}

// AutoZoom picks a zoom level for an EPSG:3857 extent, at most maxZoom.
func AutoZoom(extent r2.Box, maxZoom int) int {
	sw, _ := geo.Transform(extent.Min, geo.WebMercator, geo.WGS84)
	ne, _ := geo.Transform(extent.Max, geo.WebMercator, geo.WGS84)

	zoom := maxZoom
	for _, d := range []float64{ne.X - sw.X, ne.Y - sw.Y} {
		if d <= 0 {
			continue
		}
		zoom = min(zoom, int(math.Ceil(math.Log2(720/d))))
	}
	return clamp(zoom, 0, maxZoom)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
