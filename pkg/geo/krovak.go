package geo

import "math"

// ellipsoid holds the semi-major axis and first eccentricity.
type ellipsoid struct {
	a  float64
	e2 float64
}

func newEllipsoid(a, invFlattening float64) ellipsoid {
	f := 1 / invFlattening
	return ellipsoid{a: a, e2: f * (2 - f)}
}

var (
	bessel = newEllipsoid(6377397.155, 299.1528128)
	wgs84  = newEllipsoid(6378137.0, 298.257223563)
)

// Krovak parameters for EPSG:5514 (longitude of origin relative to Greenwich).
var krovak = newKrovakParams(
	bessel,
	rad(49.5),              // latitude of projection centre
	rad(24.0+50.0/60.0),    // longitude of origin
	rad(30.28813975277778), // co-latitude of cone axis
	rad(78.5),              // latitude of pseudo standard parallel
	0.9999,                 // scale factor on pseudo standard parallel
)

type krovakParams struct {
	e, lon0, alpha, phiP float64
	b, t0, n, r0         float64
}

func newKrovakParams(el ellipsoid, phiC, lon0, alpha, phiP, k float64) krovakParams {
	e := math.Sqrt(el.e2)
	sinC, cosC := math.Sincos(phiC)

	a := el.a * math.Sqrt(1-el.e2) / (1 - el.e2*sinC*sinC)
	b := math.Sqrt(1 + el.e2*math.Pow(cosC, 4)/(1-el.e2))
	gamma0 := math.Asin(sinC / b)
	t0 := math.Tan(math.Pi/4+gamma0/2) *
		math.Pow((1+e*sinC)/(1-e*sinC), e*b/2) /
		math.Pow(math.Tan(math.Pi/4+phiC/2), b)

	return krovakParams{
		e:     e,
		lon0:  lon0,
		alpha: alpha,
		phiP:  phiP,
		b:     b,
		t0:    t0,
		n:     math.Sin(phiP),
		r0:    k * a / math.Tan(phiP),
	}
}

// krovakForward projects Bessel geodetic coordinates (radians) to
// Krovak East-North easting and northing in metres.
func krovakForward(lat, lon float64) (easting, northing float64) {
	p := krovak
	esin := p.e * math.Sin(lat)

	u := 2 * (math.Atan(p.t0*math.Pow(math.Tan(lat/2+math.Pi/4), p.b)/
		math.Pow((1+esin)/(1-esin), p.e*p.b/2)) - math.Pi/4)
	v := p.b * (p.lon0 - lon)

	sinU, cosU := math.Sincos(u)
	sinA, cosA := math.Sincos(p.alpha)
	t := math.Asin(cosA*sinU + sinA*cosU*math.Cos(v))
	d := math.Asin(cosU * math.Sin(v) / math.Cos(t))

	theta := p.n * d
	r := p.r0 * math.Pow(math.Tan(math.Pi/4+p.phiP/2), p.n) /
		math.Pow(math.Tan(t/2+math.Pi/4), p.n)

	southing := r * math.Cos(theta)
	westing := r * math.Sin(theta)
	return -westing, -southing
}

// krovakInverse is the inverse of krovakForward. The latitude is refined
// iteratively until it moves less than 1e-12 rad.
func krovakInverse(easting, northing float64) (lat, lon float64) {
	p := krovak
	southing, westing := -northing, -easting

	r := math.Hypot(southing, westing)
	theta := math.Atan2(westing, southing)
	d := theta / math.Sin(p.phiP)
	t := 2 * (math.Atan(math.Pow(p.r0/r, 1/p.n)*math.Tan(math.Pi/4+p.phiP/2)) - math.Pi/4)

	sinT, cosT := math.Sincos(t)
	sinA, cosA := math.Sincos(p.alpha)
	u := math.Asin(cosA*sinT - sinA*cosT*math.Cos(d))
	v := math.Asin(cosT * math.Sin(d) / math.Cos(u))

	base := math.Pow(p.t0, -1/p.b) * math.Pow(math.Tan(u/2+math.Pi/4), 1/p.b)
	lat = u
	for range 20 {
		esin := p.e * math.Sin(lat)
		next := 2 * (math.Atan(base*math.Pow((1+esin)/(1-esin), p.e/2)) - math.Pi/4)
		if math.Abs(next-lat) < 1e-12 {
			lat = next
			break
		}
		lat = next
	}
	return lat, p.lon0 - v/p.b
}
