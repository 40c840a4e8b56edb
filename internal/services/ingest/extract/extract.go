// Package extract turns EN.dat entity rows into HamRecords
package extract

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	perr "hamfinder/internal/platform/errors"
	pstrings "hamfinder/internal/platform/strings"
	ptime "hamfinder/internal/platform/time"
	"hamfinder/internal/services/ingest/domain"
)

// EN.dat column positions
const (
	colCallsign  = 4
	colFullName  = 7
	colFirstName = 8
	colLastName  = 10
	colAddress   = 15
	colCity      = 16
	colState     = 17
	colZip       = 18

	// MinColumns is the narrowest row that still reaches the zip column
	MinColumns = colZip + 1
)

// Reader is a finite, single pass record stream over one entity file.
// It cannot be rewound; use Collect when the records are needed twice
type Reader struct {
	c     io.Closer
	r     *csv.Reader
	title *pstrings.Titler
	date  string
	name  string

	rows  int
	clubs int
}

var _ domain.RecordReader = (*Reader)(nil)

// NewReader reads pipe-delimited rows from rd and stamps every record with date
func NewReader(rd io.Reader, name, date string) *Reader {
	cr := csv.NewReader(rd)
	cr.Comma = '|'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return &Reader{r: cr, title: pstrings.NewTitler(), date: date, name: name}
}

// Open opens the entity file at path; its modification date becomes the ingestion date
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodePersistence, "open entity file %s", path)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodePersistence, "stat entity file %s", path)
	}
	r := NewReader(f, path, ptime.Date(fi.ModTime()))
	r.c = f
	return r, nil
}

// Date is the ingestion date stamped on every record
func (r *Reader) Date() string { return r.date }

// Next returns the next individual's record, skipping club rows, and io.EOF at the end.
// A row narrower than MinColumns is a malformed record error
func (r *Reader) Next() (domain.HamRecord, error) {
	for {
		row, err := r.r.Read()
		if errors.Is(err, io.EOF) {
			return domain.HamRecord{}, io.EOF
		}
		if err != nil {
			// csv.ParseError carries the line
			return domain.HamRecord{}, perr.Wrapf(err, perr.ErrorCodeMalformedRecord, "%s", r.name)
		}
		line, _ := r.r.FieldPos(0)
		r.rows++
		if len(row) < MinColumns {
			return domain.HamRecord{}, perr.Malformedf("%s line %d: %d columns, need at least %d", r.name, line, len(row), MinColumns)
		}
		rec := r.project(row)
		if rec.IsClub() {
			r.clubs++
			continue
		}
		return rec, nil
	}
}

func (r *Reader) project(row []string) domain.HamRecord {
	return domain.HamRecord{
		Callsign:      row[colCallsign],
		FullName:      r.title.Title(row[colFullName]),
		FirstName:     r.title.Title(row[colFirstName]),
		LastName:      r.title.Title(row[colLastName]),
		Address:       r.title.Title(row[colAddress]),
		City:          r.title.Title(row[colCity]),
		State:         row[colState],
		ZipCode:       row[colZip],
		IngestionDate: r.date,
	}
}

// Stats reports rows read so far and how many were dropped as clubs
func (r *Reader) Stats() (rows, clubs int) { return r.rows, r.clubs }

// Close releases the underlying file, if any
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}
	err := r.c.Close()
	r.c = nil
	return err
}

// Collect drains rr into a ResultSet and closes it
func Collect(rr domain.RecordReader) (domain.ResultSet, error) {
	defer func() { _ = rr.Close() }()
	var out domain.ResultSet
	for {
		rec, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// Extractor adapts Open to domain.Extractor
type Extractor struct{}

// New returns an Extractor
func New() Extractor { return Extractor{} }

// Open implements domain.Extractor
func (Extractor) Open(path string) (domain.RecordReader, error) { return Open(path) }
