package accident

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/matzehuels/accimap/pkg/errors"
)

// Column names of the accident table.
const (
	ColD       = "d"      // national-grid X
	ColE       = "e"      // national-grid Y
	ColDate    = "p2a"    // accident date
	ColRegion  = "region" // region code, e.g. "JHM"
	ColCause   = "p10"    // main cause code
	ColAlcohol = "p11"    // alcohol involvement code
	ColID      = "p1"     // accident identifier
)

// Columns lists every column a table must provide.
var Columns = []string{ColD, ColE, ColDate, ColRegion, ColCause, ColAlcohol, ColID}

// MissingCode is stored in integer fields whose cell was empty.
const MissingCode = -1

// Cause codes used by the reports.
const (
	CauseWildlife = 4 // p10: accident caused by an animal
)

// Record is one row of the accident table.
//
// D and E are NaN when the cell was missing. Row is the zero-based position
// in the source table and serves as the record identity.
type Record struct {
	Row     int
	D, E    float64
	RawDate string
	Region  string
	Cause   int
	Alcohol int
	ID      string
}

// HasCoords reports whether both coordinates are present.
func (r Record) HasCoords() bool {
	return !math.IsNaN(r.D) && !math.IsNaN(r.E)
}

// nanValues are the cell spellings treated as missing.
var nanValues = []string{"", "NA", "NaN", "nan", "NaT", "None", "<nil>"}

// FromDataFrame converts a gota DataFrame into records.
// All required columns must be present; a non-numeric coordinate or code
// is an [errors.ErrCodeInvalidInput] or [errors.ErrCodeInvalidCoordinate] error.
func FromDataFrame(df dataframe.DataFrame) ([]Record, error) {
	if df.Err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, df.Err, "read table")
	}

	cols := make(map[string]series.Series, len(Columns))
	for _, name := range Columns {
		s := df.Col(name)
		if s.Err != nil {
			return nil, errors.New(errors.ErrCodeMissingColumn, "column %q not found", name)
		}
		cols[name] = s
	}

	n := df.Nrow()
	out := make([]Record, n)
	nan := make(map[string][]bool, len(Columns))
	raw := make(map[string][]string, len(Columns))
	for name, s := range cols {
		nan[name] = s.IsNaN()
		raw[name] = s.Records()
	}

	for i := range n {
		rec := Record{Row: i}
		var err error
		if rec.D, err = parseCoord(raw[ColD][i], nan[ColD][i]); err != nil {
			return nil, rowError(i, ColD, err)
		}
		if rec.E, err = parseCoord(raw[ColE][i], nan[ColE][i]); err != nil {
			return nil, rowError(i, ColE, err)
		}
		if rec.Cause, err = parseCode(raw[ColCause][i], nan[ColCause][i]); err != nil {
			return nil, rowError(i, ColCause, err)
		}
		if rec.Alcohol, err = parseCode(raw[ColAlcohol][i], nan[ColAlcohol][i]); err != nil {
			return nil, rowError(i, ColAlcohol, err)
		}
		if !nan[ColDate][i] {
			rec.RawDate = strings.TrimSpace(raw[ColDate][i])
		}
		if !nan[ColRegion][i] {
			rec.Region = strings.TrimSpace(raw[ColRegion][i])
		}
		if !nan[ColID][i] {
			rec.ID = strings.TrimSpace(raw[ColID][i])
		}
		out[i] = rec
	}
	return out, nil
}

func rowError(row int, col string, err error) error {
	code := errors.ErrCodeInvalidInput
	if col == ColD || col == ColE {
		code = errors.ErrCodeInvalidCoordinate
	}
	return errors.Wrap(code, err, "row %d: column %s", row, col)
}

// parseCoord accepts a decimal point or a decimal comma.
func parseCoord(s string, missing bool) (float64, error) {
	if missing {
		return math.NaN(), nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// parseCode parses an integer code. Whole-number float spellings such as
// "4.0" are accepted.
func parseCode(s string, missing bool) (int, error) {
	if missing {
		return MissingCode, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return MissingCode, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}
