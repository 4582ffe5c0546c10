package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// EarthRadius is the sphere radius used by Web Mercator.
const EarthRadius = 6378137.0

// MaxMercatorLat is the latitude at which Web Mercator becomes square.
const MaxMercatorLat = 85.0511287798066

// MercatorHalfWorld is the largest absolute Web Mercator coordinate.
var MercatorHalfWorld = math.Pi * EarthRadius

func mercatorForward(lonlat r2.Vec) r2.Vec {
	lat := math.Max(-MaxMercatorLat, math.Min(MaxMercatorLat, lonlat.Y))
	return r2.Vec{
		X: EarthRadius * rad(lonlat.X),
		Y: EarthRadius * math.Log(math.Tan(math.Pi/4+rad(lat)/2)),
	}
}

func mercatorInverse(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: deg(p.X / EarthRadius),
		Y: deg(2*math.Atan(math.Exp(p.Y/EarthRadius)) - math.Pi/2),
	}
}
