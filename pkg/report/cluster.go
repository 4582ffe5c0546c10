package report

import (
	"context"
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/accimap/pkg/accident"
	"github.com/matzehuels/accimap/pkg/cluster"
	"github.com/matzehuels/accimap/pkg/geo"
	"github.com/matzehuels/accimap/pkg/render"
)

// ClusterOptions selects and partitions the accidents of the cluster
// figure.
type ClusterOptions struct {
	Region     string
	MinAlcohol int
	Clusters   int
	Title      string
	Output
}

// DefaultClusterTitle is the title of the default cluster figure.
const DefaultClusterTitle = "Nehody v JHM kraji s významnou měrou alkoholu"

// DefaultClusterOptions returns twelve clusters of South Moravian accidents
// with significant alcohol involvement, saved to geo2.png.
func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{
		Region:     "JHM",
		MinAlcohol: 4,
		Clusters:   12,
		Title:      DefaultClusterTitle,
		Output:     Output{Path: "geo2.png"},
	}
}

// ClusterResult extends [Result] with the dissolved clusters, in the order
// they were drawn. Their geometry is in EPSG:3857.
type ClusterResult struct {
	*Result
	Clusters []cluster.Cluster
}

// RenderClusters partitions the selected accidents by Ward clustering of
// their national-grid coordinates, then draws a grey hull per cluster and
// the members coloured by cluster size.
func RenderClusters(ctx context.Context, rc *Context, frame *accident.GeoFrame, opts ClusterOptions) (*ClusterResult, error) {
	var clusters []cluster.Cluster
	res, err := stage(ctx, "cluster", func() (*Result, int, error) {
		selected := frame.Filter(accident.All(
			accident.InRegion(opts.Region),
			accident.MinAlcohol(opts.MinAlcohol),
		))

		labels, err := cluster.Agglomerative(selected.GridPoints(), opts.Clusters)
		if err != nil {
			return nil, 0, err
		}
		merc, err := selected.ToCRS(geo.WebMercator)
		if err != nil {
			return nil, 0, err
		}
		clusters, err = cluster.Dissolve(labels, merc.Points(), geo.WebMercator.SRID())
		if err != nil {
			return nil, 0, err
		}

		lo, hi := clusters[0].Count, clusters[0].Count
		for _, c := range clusters[1:] {
			lo, hi = min(lo, c.Count), max(hi, c.Count)
		}
		bar := &render.ColorBar{Map: render.Viridis(float64(lo), float64(hi)), Label: "count"}

		fig := rc.figure(1, 1)
		fig.SetColorBar(bar)
		panel := fig.Panel(0, 0)
		panel.Title = opts.Title

		var pts []r2.Vec
		var colors []color.Color
		for _, c := range clusters {
			panel.AddPolygon(c.Ring(), render.HullGrey)

			col := bar.ColorAt(float64(c.Count))
			for _, i := range c.Members {
				pts = append(pts, merc.Records[i].XY())
				colors = append(colors, col)
			}
			rc.logger().Debug("cluster", "label", c.Label, "count", c.Count)
		}
		panel.AddPoints(pts, render.PointStyle{
			ColorAt: func(i int) color.Color { return colors[i] },
			Radius:  vg.Points(3),
		})

		res, err := finish(ctx, rc, fig, opts.Title, opts.Output)
		return res, selected.Len(), err
	})
	if err != nil {
		return nil, err
	}
	return &ClusterResult{Result: res, Clusters: clusters}, nil
}
