package accident

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/matzehuels/accimap/pkg/errors"
)

// Load reads an accident table from path. Files ending in .gz are
// decompressed transparently.
func Load(path string) ([]Record, error) {
	if err := errors.ValidateInputPath(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input table %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decompress %s", path)
		}
		defer gz.Close()
		r = gz
	}
	return ReadCSV(r)
}

// ReadCSV reads an accident table in CSV form. Every column is loaded as a
// string so that identifiers and codes keep their original spelling.
func ReadCSV(r io.Reader) ([]Record, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues),
		dataframe.WithLazyQuotes(true),
	)
	return FromDataFrame(df)
}
