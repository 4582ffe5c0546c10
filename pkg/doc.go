// Package pkg provides the libraries behind accimap, a tool that maps Czech
// traffic accidents.
//
// # Overview
//
// The pkg directory is organized by concern:
//
//  1. [accident] - Loading the accident table and attaching point geometry
//  2. [geo] - Coordinate systems (S-JTSK Krovak, WGS84, Web Mercator)
//  3. [cluster] - Ward agglomerative clustering and per-cluster dissolve
//  4. [tiles] - XYZ basemap tiles: addressing, download, mosaic
//  5. [render] - Map figures on gonum/plot
//  6. [report] - The regional-year and cluster figures
//  7. [cache], [httputil], [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow through accimap:
//
//	accidents.csv.gz
//	       ↓
//	  [accident] package (load, drop rows without coordinates, clip)
//	       ↓
//	  [report] package (filter, reproject, cluster)
//	       ↓
//	  [render] package (panels over a [tiles] basemap)
//	       ↓
//	  geo1.png, geo2.png
package pkg
