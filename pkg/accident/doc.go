// Package accident loads traffic-accident tables and turns them into
// geometry-carrying record sets.
//
// # Loading
//
// [Load] reads a CSV table, optionally gzip-compressed, into a gota
// DataFrame and converts it to [Record] values. The table must carry the
// columns d, e, p2a, region, p10, p11 and p1; extra columns are ignored.
// Empty cells and the usual NaN spellings mark a value as missing.
//
// # Building Geometry
//
// [Build] is the geometry stage of the report pipeline:
//
//  1. Drop records missing either coordinate
//  2. Parse the p2a date (each distinct string is parsed once)
//  3. Construct a point from (d, e)
//  4. Clip to the national bounding rectangle, borders included
//  5. Tag the result with EPSG:5514
//
// The resulting [GeoFrame] guarantees that every record has a point inside
// the bounds. Records are never mutated after Build; [GeoFrame.Filter],
// [GeoFrame.ToCRS] and [GeoFrame.SplitByYear] return new frames.
package accident
