package cluster

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/accimap/pkg/errors"
)

// Cluster is the dissolved aggregate of all members sharing one label.
// Geometry is expressed in the space of the points given to [Dissolve],
// identified by SRID.
type Cluster struct {
	Label   int
	Count   int
	Members []int
	Points  *geom.MultiPoint
	Hull    geom.T
}

// Ring returns the hull vertices. A cluster whose members all coincide
// yields one vertex; collinear members yield the two end points.
func (c *Cluster) Ring() []r2.Vec {
	var flat []float64
	switch h := c.Hull.(type) {
	case *geom.Polygon:
		flat = h.LinearRing(0).FlatCoords()
	case *geom.LineString:
		flat = h.FlatCoords()
	case *geom.Point:
		flat = h.FlatCoords()
	}
	out := make([]r2.Vec, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		out = append(out, r2.Vec{X: flat[i], Y: flat[i+1]})
	}
	return out
}

// Dissolve groups points by label. Clusters are returned in the order their
// labels first appear; Members holds the input indices of each cluster.
func Dissolve(labels []int, points []r2.Vec, srid int) ([]Cluster, error) {
	if len(labels) != len(points) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%d labels for %d points", len(labels), len(points))
	}

	index := make(map[int]int)
	var out []Cluster
	for i, l := range labels {
		j, ok := index[l]
		if !ok {
			j = len(out)
			index[l] = j
			out = append(out, Cluster{Label: l})
		}
		out[j].Members = append(out[j].Members, i)
	}

	for j := range out {
		c := &out[j]
		c.Count = len(c.Members)
		flat := make([]float64, 0, 2*c.Count)
		for _, i := range c.Members {
			flat = append(flat, points[i].X, points[i].Y)
		}
		c.Points = geom.NewMultiPointFlat(geom.XY, flat).SetSRID(srid)
		c.Hull = hull(flat, srid)
	}
	return out, nil
}

// hull returns the convex hull of flat XY coordinates. Duplicate points are
// removed first since the hull calculator rejects inputs with fewer than
// three distinct points.
func hull(flat []float64, srid int) geom.T {
	seen := make(map[[2]float64]bool, len(flat)/2)
	uniq := make([]float64, 0, len(flat))
	for i := 0; i+1 < len(flat); i += 2 {
		k := [2]float64{flat[i], flat[i+1]}
		if seen[k] {
			continue
		}
		seen[k] = true
		uniq = append(uniq, k[0], k[1])
	}

	switch len(uniq) / 2 {
	case 0:
		return geom.NewPointEmpty(geom.XY).SetSRID(srid)
	case 1:
		return geom.NewPointFlat(geom.XY, uniq).SetSRID(srid)
	case 2:
		return geom.NewLineStringFlat(geom.XY, uniq).SetSRID(srid)
	}

	switch h := xy.ConvexHullFlat(geom.XY, uniq).(type) {
	case *geom.Polygon:
		return h.SetSRID(srid)
	case *geom.LineString:
		return h.SetSRID(srid)
	default:
		return h
	}
}
