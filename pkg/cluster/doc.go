// Package cluster partitions planar points with hierarchical agglomerative
// clustering and aggregates the result per cluster.
//
// # Clustering
//
// [Agglomerative] uses Ward linkage. Clusters are merged along a
// nearest-neighbour chain, computing Ward distances from cluster centroids
// and sizes on the fly so that memory stays linear in the number of points.
// The recorded merges are sorted by height and the n-k lowest are applied,
// leaving exactly k clusters. Labels are numbered in the order their first
// member appears in the input.
//
// # Dissolve
//
// [Dissolve] groups geometries by label into one [Cluster] per label,
// carrying the member count, a multipoint of the members and their convex
// hull. Clusters are returned in first-seen label order.
//
// The package does not know about coordinate systems beyond tagging: the
// caller decides which space labels are computed in and which space the
// dissolved geometry lives in.
package cluster
