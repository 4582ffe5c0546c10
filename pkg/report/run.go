package report

import (
	"context"

	"github.com/matzehuels/accimap/pkg/accident"
)

// DefaultInput is the accident table read when no path is given.
const DefaultInput = "accidents.csv.gz"

// RunOptions configures [Run].
type RunOptions struct {
	Input    string
	Regional RegionalOptions
	Cluster  ClusterOptions
}

// DefaultRunOptions writes geo1.png and geo2.png and shows both.
func DefaultRunOptions() RunOptions {
	opts := RunOptions{
		Input:    DefaultInput,
		Regional: DefaultRegionalOptions(),
		Cluster:  DefaultClusterOptions(),
	}
	opts.Regional.Show = true
	opts.Cluster.Show = true
	return opts
}

// Summary collects the outcome of [Run].
type Summary struct {
	Stats    accident.BuildStats
	Regional *Result
	Cluster  *ClusterResult
}

// Run loads the input and renders the regional-year figure followed by the
// cluster figure. The first failure ends the run.
func Run(ctx context.Context, rc *Context, opts RunOptions) (*Summary, error) {
	frame, stats, err := Prepare(ctx, rc, opts.Input)
	if err != nil {
		return nil, err
	}
	sum := &Summary{Stats: stats}

	if sum.Regional, err = RenderRegionalYears(ctx, rc, frame, opts.Regional); err != nil {
		return sum, err
	}
	if sum.Cluster, err = RenderClusters(ctx, rc, frame, opts.Cluster); err != nil {
		return sum, err
	}
	return sum, nil
}
