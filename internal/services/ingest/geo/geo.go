// Package geo holds the eligible postal code set and the record filter
package geo

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/logger"
	"hamfinder/internal/services/ingest/domain"
)

// Set is a read only set of postal codes matched by exact string
type Set map[string]struct{}

var _ domain.ZipSet = Set(nil)

// NewSet builds a Set from codes
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports exact membership
func (s Set) Contains(zip string) bool {
	_, ok := s[zip]
	return ok
}

// Len is the number of codes
func (s Set) Len() int { return len(s) }

// Read parses one code per line. Line endings are stripped and blank lines skipped;
// nothing else is normalised
func Read(rd io.Reader) (Set, error) {
	s := Set{}
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		s[line] = struct{}{}
	}
	return s, sc.Err()
}

// Load reads the newline delimited list at path
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodePersistence, "open postal code list %s", path)
	}
	defer func() { _ = f.Close() }()
	s, err := Read(f)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodePersistence, "read postal code list %s", path)
	}
	return s, nil
}

// Lazy loads the list on first use and serves the same set afterwards
type Lazy struct {
	path string
	load func(string) (Set, error)

	once sync.Once
	set  Set
	err  error
}

var _ domain.GeoLoader = (*Lazy)(nil)

// NewLazy returns a loader for path
func NewLazy(path string) *Lazy { return &Lazy{path: path, load: Load} }

// Load returns the set, reading the file at most once
func (l *Lazy) Load(ctx context.Context) (domain.ZipSet, error) {
	l.once.Do(func() {
		l.set, l.err = l.load(l.path)
		if l.err == nil {
			logger.C(ctx).Info().Str("path", l.path).Int("codes", l.set.Len()).Msg("eligible postal codes loaded")
		}
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.set, nil
}

// Filter keeps records whose zip code is in set, preserving order
func Filter(records []domain.HamRecord, set domain.ZipSet) domain.ResultSet {
	out := make(domain.ResultSet, 0, len(records))
	for _, r := range records {
		if set.Contains(r.ZipCode) {
			out = append(out, r)
		}
	}
	return out
}

// Stream drains rr through the filter without materialising rejected records.
// It returns the kept records and how many records were read
func Stream(rr domain.RecordReader, set domain.ZipSet) (domain.ResultSet, int, error) {
	var (
		out  domain.ResultSet
		seen int
	)
	for {
		rec, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return out, seen, nil
		}
		if err != nil {
			return nil, seen, err
		}
		seen++
		if set.Contains(rec.ZipCode) {
			out = append(out, rec)
		}
	}
}
