package geo

import "math"

// translation is a geocentric datum shift in metres.
type translation struct{ dx, dy, dz float64 }

func (t translation) negate() translation { return translation{-t.dx, -t.dy, -t.dz} }

// sjtskToWGS84Shift moves S-JTSK geocentric coordinates onto WGS84.
var sjtskToWGS84Shift = translation{589, 76, 480}

// shiftDatum converts geodetic coordinates (radians, zero height) on src to
// geodetic coordinates on dst via geocentric translation.
func shiftDatum(lat, lon float64, src, dst ellipsoid, t translation) (float64, float64) {
	x, y, z := toGeocentric(lat, lon, src)
	return fromGeocentric(x+t.dx, y+t.dy, z+t.dz, dst)
}

func toGeocentric(lat, lon float64, el ellipsoid) (x, y, z float64) {
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	n := el.a / math.Sqrt(1-el.e2*sinLat*sinLat)
	return n * cosLat * cosLon, n * cosLat * sinLon, n * (1 - el.e2) * sinLat
}

func fromGeocentric(x, y, z float64, el ellipsoid) (lat, lon float64) {
	p := math.Hypot(x, y)
	lon = math.Atan2(y, x)
	lat = math.Atan2(z, p*(1-el.e2))
	for range 10 {
		sinLat := math.Sin(lat)
		n := el.a / math.Sqrt(1-el.e2*sinLat*sinLat)
		h := p/math.Cos(lat) - n
		lat = math.Atan2(z, p*(1-el.e2*n/(n+h)))
	}
	return lat, lon
}
