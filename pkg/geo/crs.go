package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/accimap/pkg/errors"
)

// CRS identifies a coordinate reference system by its EPSG code.
type CRS string

// Supported reference systems.
const (
	SJTSK       CRS = "EPSG:5514"
	WGS84       CRS = "EPSG:4326"
	WebMercator CRS = "EPSG:3857"
)

// SRID returns the numeric EPSG code, or 0 for an unknown system.
func (c CRS) SRID() int {
	switch c {
	case SJTSK:
		return 5514
	case WGS84:
		return 4326
	case WebMercator:
		return 3857
	}
	return 0
}

// Valid reports whether c is one of the supported systems.
func (c CRS) Valid() bool { return c.SRID() != 0 }

// CzechBounds is the clip rectangle applied to national-grid coordinates.
var CzechBounds = r2.Box{
	Min: r2.Vec{X: -951499.37, Y: -1353292.51},
	Max: r2.Vec{X: -159365.31, Y: -911053.67},
}

// Transform converts p from one reference system to another.
// WGS84 coordinates are (longitude, latitude) in degrees.
func Transform(p r2.Vec, from, to CRS) (r2.Vec, error) {
	if !from.Valid() {
		return r2.Vec{}, errors.New(errors.ErrCodeUnsupported, "unsupported source CRS %q", from)
	}
	if !to.Valid() {
		return r2.Vec{}, errors.New(errors.ErrCodeUnsupported, "unsupported target CRS %q", to)
	}
	if from == to {
		return p, nil
	}

	lonlat := p
	switch from {
	case SJTSK:
		lonlat = sjtskToWGS84(p)
	case WebMercator:
		lonlat = mercatorInverse(p)
	}

	switch to {
	case SJTSK:
		return wgs84ToSJTSK(lonlat), nil
	case WebMercator:
		return mercatorForward(lonlat), nil
	}
	return lonlat, nil
}

// Transformer returns a reusable function converting between two systems.
// The error is reported once, up front, instead of per coordinate.
func Transformer(from, to CRS) (func(r2.Vec) r2.Vec, error) {
	if _, err := Transform(r2.Vec{}, from, to); err != nil {
		return nil, err
	}
	return func(p r2.Vec) r2.Vec {
		q, _ := Transform(p, from, to)
		return q
	}, nil
}

func sjtskToWGS84(p r2.Vec) r2.Vec {
	lat, lon := krovakInverse(p.X, p.Y)
	lat, lon = shiftDatum(lat, lon, bessel, wgs84, sjtskToWGS84Shift)
	return r2.Vec{X: deg(lon), Y: deg(lat)}
}

func wgs84ToSJTSK(p r2.Vec) r2.Vec {
	lat, lon := shiftDatum(rad(p.Y), rad(p.X), wgs84, bessel, sjtskToWGS84Shift.negate())
	e, n := krovakForward(lat, lon)
	return r2.Vec{X: e, Y: n}
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }
