// Package tabular reads delimited source files with a declared header
// contract: the first row names the columns, callers declare which columns
// they require, and each data row is surfaced as a column→value record.
// Parsing is pure: no registry or graph dependencies.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lisanlab/lisan-backend/internal/domain"
)

// ErrMalformedRow marks a single unparseable or truncated data row.
// Callers skip the row and keep reading; it never aborts a file.
var ErrMalformedRow = errors.New("malformed row")

// Row maps a column name to its raw string value for one data row.
type Row map[string]string

// Reader streams rows from one delimited source file.
type Reader struct {
	name   string
	header []string
	index  map[string]int
	csv    *csv.Reader
}

// NewReader wraps r as a delimited source named name (used in error
// messages), validates that every required column is present in the header,
// and returns a row streamer.
//
// Fails with domain.ErrEmptyFile when there is no header row at all, or a
// domain.MissingColumnsError naming the absent columns. A header with zero
// data rows is a valid empty source.
func NewReader(r io.Reader, name string, delimiter rune, required []string) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1 // ragged rows surface per-row, not per-file
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s: %w", name, domain.ErrEmptyFile)
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
			header[0] = col
		}
		col = strings.TrimSpace(col)
		header[i] = col
		index[col] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NewMissingColumnsError(name, missing)
	}

	return &Reader{name: name, header: header, index: index, csv: cr}, nil
}

// Open opens the file at path and returns a Reader over it plus the file for
// closing. A nonexistent path maps to domain.ErrSourceMissing so callers can
// distinguish optional-source skips from real failures.
func Open(path string, delimiter rune, required []string) (*Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%s: %w", path, domain.ErrSourceMissing)
		}
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	r, err := NewReader(f, path, delimiter, required)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return r, f, nil
}

// Header returns the column names in file order.
func (r *Reader) Header() []string { return r.header }

// Read returns the next data row, io.EOF at end of file, or an error
// wrapping ErrMalformedRow for a row that cannot be parsed. Values are
// trimmed of the line-ending artifacts csv leaves on the last field.
func (r *Reader) Read() (Row, error) {
	record, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("%s line %d: %w", r.name, parseErr.Line, ErrMalformedRow)
		}
		return nil, fmt.Errorf("%s: read row: %w", r.name, err)
	}

	row := make(Row, len(r.header))
	for col, i := range r.index {
		if i < len(record) {
			row[col] = strings.TrimRight(record[i], "\r")
		}
	}
	return row, nil
}
