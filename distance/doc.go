// Package distance provides the spectral distance functions used to compare
// raster cells, segments and cluster centers.
//
// Metrics are selected once, by Kind, when an algorithm is constructed; the
// resolved Func is then called in tight loops without any further dispatch.
// Segment-level comparisons work on per-band aggregate statistics, so their
// cost is O(bands) regardless of segment size.
package distance
