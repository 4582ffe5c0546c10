// Package geo converts coordinates between the reference systems accimap
// works in.
//
// # Reference Systems
//
// Three coordinate reference systems are supported:
//
//   - [SJTSK] (EPSG:5514): Czech national grid, Krovak East-North on the
//     Bessel 1841 ellipsoid. Accident records arrive in this system.
//   - [WGS84] (EPSG:4326): geographic longitude/latitude in degrees.
//   - [WebMercator] (EPSG:3857): the projection used by XYZ tile servers.
//
// [Transform] converts a single coordinate between any pair of them.
// S-JTSK to WGS84 goes through a three-parameter geocentric datum shift,
// which keeps the error within a few metres. That is far below the
// resolution of a regional map.
//
// # Extents
//
// Extents are [r2.Box] values from gonum. [Extent] computes the bounding box
// of a point set and [Pad] grows it for display margins.
//
// [r2.Box]: https://pkg.go.dev/gonum.org/v1/gonum/spatial/r2#Box
package geo
