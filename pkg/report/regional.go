package report

import (
	"context"
	"strconv"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/accimap/pkg/accident"
	"github.com/matzehuels/accimap/pkg/geo"
	"github.com/matzehuels/accimap/pkg/render"
)

// RegionalOptions selects the accidents of the regional-year figure.
type RegionalOptions struct {
	Region        string
	Cause         int
	Years         []int
	TitleTemplate string // {region} and {year} are substituted
	Output
}

// DefaultRegionalOptions returns the wildlife-accident comparison for
// South Moravia in 2021 and 2022, saved to geo1.png.
func DefaultRegionalOptions() RegionalOptions {
	return RegionalOptions{
		Region:        "JHM",
		Cause:         accident.CauseWildlife,
		Years:         []int{2021, 2022},
		TitleTemplate: DefaultRegionalTitle,
		Output:        Output{Path: "geo1.png"},
	}
}

// DefaultRegionalTitle names each panel after the region and the year.
const DefaultRegionalTitle = "{region} kraj ({year})"

// PanelTitle expands the {region} and {year} placeholders of tmpl.
func PanelTitle(tmpl, region string, year int) string {
	return strings.NewReplacer("{region}", region, "{year}", strconv.Itoa(year)).Replace(tmpl)
}

// RenderRegionalYears draws one panel per year with the matching accidents
// as red points. Records dated outside the requested years are left out.
func RenderRegionalYears(ctx context.Context, rc *Context, frame *accident.GeoFrame, opts RegionalOptions) (*Result, error) {
	return stage(ctx, "regional", func() (*Result, int, error) {
		selected := frame.Filter(accident.All(
			accident.InRegion(opts.Region),
			accident.WithCause(opts.Cause),
		))
		years := selected.SplitByYear(opts.Years...)

		fig := rc.figure(1, len(years))
		drawn := 0
		titles := make([]string, len(years))
		for i, part := range years {
			merc, err := part.ToCRS(geo.WebMercator)
			if err != nil {
				return nil, 0, err
			}
			panel := fig.Panel(0, i)
			panel.Title = PanelTitle(opts.TitleTemplate, opts.Region, opts.Years[i])
			titles[i] = panel.Title
			panel.AddPoints(merc.Points(), render.PointStyle{Color: render.Red, Radius: vg.Points(1.5)})
			drawn += merc.Len()
			rc.logger().Debug("regional panel", "year", opts.Years[i], "points", merc.Len())
		}

		res, err := finish(ctx, rc, fig, strings.Join(titles, " | "), opts.Output)
		return res, drawn, err
	})
}
