package accident

import (
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/twpayne/go-geom"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/accimap/pkg/errors"
	"github.com/matzehuels/accimap/pkg/geo"
)

// BuildOptions configures [Build]. The zero value clips to
// [geo.CzechBounds] and logs nothing.
type BuildOptions struct {
	Bounds r2.Box
	Logger *log.Logger
}

// BuildStats reports how many records each step removed.
type BuildStats struct {
	Input         int
	MissingCoords int
	OutsideBounds int
	DistinctDates int
	Output        int
}

// Build attaches point geometry to records and clips them to the national
// bounds. See the package documentation for the exact step order.
func Build(records []Record, opts BuildOptions) (*GeoFrame, BuildStats, error) {
	if opts.Bounds == (r2.Box{}) {
		opts.Bounds = geo.CzechBounds
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	stats := BuildStats{Input: len(records)}

	// Drop rows missing either coordinate before any geometry exists.
	present := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.HasCoords() {
			stats.MissingCoords++
			continue
		}
		present = append(present, r)
	}

	dates := newDateParser()
	bounds := geom.NewBounds(geom.XY).Set(
		opts.Bounds.Min.X, opts.Bounds.Min.Y,
		opts.Bounds.Max.X, opts.Bounds.Max.Y,
	)
	srid := geo.SJTSK.SRID()

	out := make([]GeoRecord, 0, len(present))
	for _, r := range present {
		date, err := dates.parse(r.RawDate)
		if err != nil {
			return nil, stats, errors.Wrap(errors.ErrCodeInvalidDate, err, "row %d: column %s", r.Row, ColDate)
		}
		if math.IsInf(r.D, 0) || math.IsInf(r.E, 0) {
			return nil, stats, errors.New(errors.ErrCodeInvalidCoordinate, "row %d: coordinates (%v, %v) are not finite", r.Row, r.D, r.E)
		}

		pt := geom.NewPointFlat(geom.XY, []float64{r.D, r.E}).SetSRID(srid)
		if !bounds.OverlapsPoint(geom.XY, pt.Coords()) {
			stats.OutsideBounds++
			continue
		}
		out = append(out, GeoRecord{Record: r, Date: date, Point: pt})
	}

	stats.DistinctDates = dates.size()
	stats.Output = len(out)
	opts.Logger.Debug("geometry built",
		"input", stats.Input,
		"missing_coords", stats.MissingCoords,
		"outside_bounds", stats.OutsideBounds,
		"output", stats.Output)

	return &GeoFrame{CRS: geo.SJTSK, Records: out}, stats, nil
}

// dateLayouts are tried in order for every distinct date string. Dotted
// dates read month first, falling back to day first when the leading
// field exceeds 12, so "01.06.2022" is January 6 and "25.06.2022" is
// June 25.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01.02.2006",
	"1.2.2006",
	"02.01.2006",
	"2.1.2006",
	"2006/01/02",
}

// dateParser memoises parsed dates by their raw string.
type dateParser struct {
	cache map[string]time.Time
}

func newDateParser() *dateParser {
	return &dateParser{cache: make(map[string]time.Time)}
}

// parse returns the zero time for an empty string.
func (p *dateParser) parse(s string) (time.Time, error) {
	if t, ok := p.cache[s]; ok {
		return t, nil
	}
	v := strings.TrimSpace(s)
	if v == "" {
		p.cache[s] = time.Time{}
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			p.cache[s] = t
			return t, nil
		}
	}
	return time.Time{}, errors.New(errors.ErrCodeInvalidDate, "unrecognised date %q", s)
}

func (p *dateParser) size() int { return len(p.cache) }
