// Package report renders the accident maps.
//
// Three operations make up a full run:
//
//   - [Prepare] loads the accident table and attaches point geometry
//   - [RenderRegionalYears] draws one region's wildlife accidents side by
//     side for each requested year
//   - [RenderClusters] groups one region's alcohol-related accidents into
//     a fixed number of clusters and draws their hulls and sizes
//
// [Run] performs all three in order, the way the command line does without
// arguments.
//
// Every renderer receives an explicit [Context] carrying the logger, the
// basemap source, the viewer and the figure geometry; nothing is read from
// package-level state.
//
// # Coordinate spaces
//
// Cluster labels are computed on the raw national-grid pairs (d, e). Hulls,
// member multipoints and every drawn layer are in EPSG:3857.
package report
