// Package tiles fetches XYZ raster tiles and stitches them into a basemap
// covering a web-mercator extent.
//
// Tiles follow the slippy-map convention: at zoom z the world is split into
// 2^z by 2^z square tiles, x growing east and y growing south from the
// north-west corner of EPSG:3857.
//
// When no zoom is configured, [AutoZoom] derives one from the geographic
// span of the extent, ceil(log2(720/span)) over both longitude and latitude
// spans, taking the coarser of the two and clamping to the provider limit.
package tiles
