package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/core"
)

// Source columns, in order. The dominant color column is optional.
const (
	colID = iota
	colTitle
	colGender
	colComposition
	colSleeve
	colPhoto
	colURL
	colColor

	requiredColumns = colURL + 1
)

// Record is one data line of the source file. Err is set when the line
// could not be parsed; the Deduplicator reports it as an item failure.
type Record struct {
	Line int
	Item *core.CatalogItem
	Err  error
}

// CSVReader reads Records from a delimited file. The file is opened on
// the first Read and closed at end of stream.
type CSVReader struct {
	path      string
	src       io.Reader
	delimiter rune
	header    bool

	file   *os.File
	csv    *csv.Reader
	line   int
	closed bool
}

var _ batch.Reader[Record] = (*CSVReader)(nil)

// NewCSVReader creates a reader for the file at path.
func NewCSVReader(path string, delimiter rune, header bool) *CSVReader {
	return &CSVReader{path: path, delimiter: delimiter, header: header}
}

// NewCSVReaderFrom creates a reader over an already open stream.
func NewCSVReaderFrom(r io.Reader, delimiter rune, header bool) *CSVReader {
	return &CSVReader{src: r, delimiter: delimiter, header: header}
}

func (r *CSVReader) open() error {
	src := r.src
	if src == nil {
		f, err := os.Open(r.path)
		if err != nil {
			return fmt.Errorf("open import source: %w", err)
		}
		r.file = f
		src = f
	}

	cr := csv.NewReader(src)
	if r.delimiter != 0 {
		cr.Comma = r.delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	r.csv = cr

	if r.header {
		if _, err := r.next(); err != nil && !errors.Is(err, io.EOF) && !isParseError(err) {
			return err
		}
	}
	return nil
}

func (r *CSVReader) next() ([]string, error) {
	fields, err := r.csv.Read()
	if err == nil || isParseError(err) {
		r.line++
	}
	return fields, err
}

// Read returns the next Record, or io.EOF at end of stream.
func (r *CSVReader) Read(_ context.Context) (Record, error) {
	if r.closed {
		return Record{}, io.EOF
	}
	if r.csv == nil {
		if err := r.open(); err != nil {
			r.Close()
			return Record{}, err
		}
	}

	for {
		fields, err := r.next()
		switch {
		case errors.Is(err, io.EOF):
			r.Close()
			return Record{}, io.EOF
		case isParseError(err):
			return Record{Line: r.line, Err: fmt.Errorf("%w: %w", ErrMalformedRecord, err)}, nil
		case err != nil:
			return Record{}, err
		}
		if blank(fields) {
			continue
		}
		item, err := ParseItem(fields)
		return Record{Line: r.line, Item: item, Err: err}, nil
	}
}

// Close releases the underlying file. It is safe to call more than once.
func (r *CSVReader) Close() error {
	r.closed = true
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// ParseItem builds a catalog item from the columns of one source line.
func ParseItem(fields []string) (*core.CatalogItem, error) {
	if len(fields) < requiredColumns {
		return nil, fmt.Errorf("%w: %d columns, want at least %d", ErrMalformedRecord, len(fields), requiredColumns)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	gender, err := core.ParseGenderClass(fields[colGender])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	item := &core.CatalogItem{
		ID:          fields[colID],
		Title:       fields[colTitle],
		Gender:      gender,
		Composition: fields[colComposition],
		Sleeve:      fields[colSleeve],
		Photo:       fields[colPhoto],
		URL:         fields[colURL],
	}
	if len(fields) > colColor && fields[colColor] != "" {
		color, err := core.ParseColorVector(fields[colColor])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}
		item.Color = &color
	}
	return item, nil
}

func isParseError(err error) bool {
	var pe *csv.ParseError
	return errors.As(err, &pe)
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
