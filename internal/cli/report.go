package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/accimap/pkg/accident"
	"github.com/matzehuels/accimap/pkg/report"
)

// figureOpts holds the flags shared by the single-figure commands.
type figureOpts struct {
	output string
	show   bool
}

func (o *figureOpts) register(cmd *cobra.Command, defaultOutput string) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output PNG (default "+defaultOutput+")")
	cmd.Flags().BoolVar(&o.show, "show", false, "open the figure for viewing")
}

func (o *figureOpts) apply(out *report.Output) {
	if o.output != "" {
		out.Path = o.output
	}
	out.Show = o.show
}

// runAll renders both figures and shows each one in turn.
func (c *CLI) runAll(ctx context.Context) error {
	e, err := c.newEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	opts := e.cfg.RunOptions()
	opts.Regional.Show = true
	opts.Cluster.Show = true

	prog := newProgress(loggerFromContext(ctx))
	sum, err := report.Run(ctx, e.rc, opts)
	if err != nil {
		return err
	}

	printSuccess("Loaded %s", opts.Input)
	printStats(sum.Stats)
	printResult(sum.Regional)
	printResult(sum.Cluster.Result)
	printDetail("%d clusters", len(sum.Cluster.Clusters))
	prog.done("Rendered 2 figures")
	return nil
}

// regionalCommand creates the "regional" subcommand.
func (c *CLI) regionalCommand() *cobra.Command {
	var opts figureOpts
	cmd := &cobra.Command{
		Use:   "regional",
		Short: "Render wildlife accidents per year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.newEnv(ctx, opts.show)
			if err != nil {
				return err
			}
			defer e.Close()

			ro := e.cfg.RegionalOptions()
			opts.apply(&ro.Output)

			frame, err := c.prepare(ctx, e, e.cfg.Input)
			if err != nil {
				return err
			}
			res, err := report.RenderRegionalYears(ctx, e.rc, frame, ro)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}
	opts.register(cmd, report.DefaultRegionalOptions().Path)
	return cmd
}

// clusterCommand creates the "cluster" subcommand.
func (c *CLI) clusterCommand() *cobra.Command {
	var opts figureOpts
	var clusters int
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Render clusters of alcohol-related accidents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.newEnv(ctx, opts.show)
			if err != nil {
				return err
			}
			defer e.Close()

			co := e.cfg.ClusterOptions()
			opts.apply(&co.Output)
			if cmd.Flags().Changed("clusters") {
				co.Clusters = clusters
			}

			frame, err := c.prepare(ctx, e, e.cfg.Input)
			if err != nil {
				return err
			}
			res, err := report.RenderClusters(ctx, e.rc, frame, co)
			if err != nil {
				return err
			}
			printResult(res.Result)
			for _, cl := range res.Clusters {
				printKeyValue(fmt.Sprintf("cluster %d", cl.Label), fmt.Sprintf("%d accidents", cl.Count))
			}
			return nil
		},
	}
	opts.register(cmd, report.DefaultClusterOptions().Path)
	cmd.Flags().IntVar(&clusters, "clusters", report.DefaultClusterOptions().Clusters, "number of clusters")
	return cmd
}

// prepare loads the input table behind a spinner.
func (c *CLI) prepare(ctx context.Context, e *env, input string) (*accident.GeoFrame, error) {
	spin := newSpinner(ctx, "Loading accidents from "+input)
	spin.Start()
	frame, stats, err := report.Prepare(ctx, e.rc, input)
	if err != nil {
		spin.StopWithError("Could not load " + input)
		return nil, err
	}
	spin.StopWithSuccess(fmt.Sprintf("Loaded %s", input))
	printStats(stats)
	return frame, nil
}
