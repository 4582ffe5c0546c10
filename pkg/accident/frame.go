package accident

import (
	"time"

	"github.com/twpayne/go-geom"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/accimap/pkg/geo"
)

// GeoRecord is a [Record] with a parsed date and a point geometry.
// Date is the zero time when the source cell was empty.
type GeoRecord struct {
	Record
	Date  time.Time
	Point *geom.Point
}

// XY returns the point coordinates in the frame's CRS.
func (r *GeoRecord) XY() r2.Vec {
	return r2.Vec{X: r.Point.X(), Y: r.Point.Y()}
}

// Grid returns the raw national-grid coordinates (d, e), independent of
// the frame's CRS.
func (r *GeoRecord) Grid() r2.Vec {
	return r2.Vec{X: r.D, Y: r.E}
}

// GeoFrame is a set of geometry-carrying records sharing one CRS.
type GeoFrame struct {
	CRS     geo.CRS
	Records []GeoRecord
}

// Len returns the number of records.
func (f *GeoFrame) Len() int { return len(f.Records) }

// Predicate selects records.
type Predicate func(*GeoRecord) bool

// InRegion matches records of one region code.
func InRegion(code string) Predicate {
	return func(r *GeoRecord) bool { return r.Region == code }
}

// WithCause matches records whose p10 equals code.
func WithCause(code int) Predicate {
	return func(r *GeoRecord) bool { return r.Cause == code }
}

// MinAlcohol matches records whose p11 is at least level.
func MinAlcohol(level int) Predicate {
	return func(r *GeoRecord) bool { return r.Alcohol >= level }
}

// All matches records satisfying every predicate.
func All(preds ...Predicate) Predicate {
	return func(r *GeoRecord) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Filter returns a frame with the records matching keep, in order.
func (f *GeoFrame) Filter(keep Predicate) *GeoFrame {
	out := make([]GeoRecord, 0, len(f.Records))
	for i := range f.Records {
		if keep(&f.Records[i]) {
			out = append(out, f.Records[i])
		}
	}
	return &GeoFrame{CRS: f.CRS, Records: out}
}

// ToCRS returns a copy of the frame with every point transformed to crs.
// Record identities and order are preserved.
func (f *GeoFrame) ToCRS(crs geo.CRS) (*GeoFrame, error) {
	tf, err := geo.Transformer(f.CRS, crs)
	if err != nil {
		return nil, err
	}
	srid := crs.SRID()
	out := make([]GeoRecord, len(f.Records))
	for i, r := range f.Records {
		p := tf(r.XY())
		r.Point = geom.NewPointFlat(geom.XY, []float64{p.X, p.Y}).SetSRID(srid)
		out[i] = r
	}
	return &GeoFrame{CRS: crs, Records: out}, nil
}

// SplitByYear partitions the frame by calendar year. The result has one
// frame per requested year, in the same order; records from other years
// are left out.
func (f *GeoFrame) SplitByYear(years ...int) []*GeoFrame {
	index := make(map[int]int, len(years))
	parts := make([]*GeoFrame, len(years))
	for i, y := range years {
		index[y] = i
		parts[i] = &GeoFrame{CRS: f.CRS}
	}
	for _, r := range f.Records {
		if r.Date.IsZero() {
			continue
		}
		if i, ok := index[r.Date.Year()]; ok {
			parts[i].Records = append(parts[i].Records, r)
		}
	}
	return parts
}

// Points returns the record coordinates in the frame's CRS.
func (f *GeoFrame) Points() []r2.Vec {
	out := make([]r2.Vec, len(f.Records))
	for i := range f.Records {
		out[i] = f.Records[i].XY()
	}
	return out
}

// GridPoints returns the raw (d, e) pairs of every record.
func (f *GeoFrame) GridPoints() []r2.Vec {
	out := make([]r2.Vec, len(f.Records))
	for i := range f.Records {
		out[i] = f.Records[i].Grid()
	}
	return out
}

// Rows returns the source row of every record.
func (f *GeoFrame) Rows() []int {
	out := make([]int, len(f.Records))
	for i := range f.Records {
		out[i] = f.Records[i].Row
	}
	return out
}
