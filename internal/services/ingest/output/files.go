// Package output persists run result sets keyed by run date
package output

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/logger"
	"hamfinder/internal/services/ingest/domain"
)

// CSVHeader is the fixed header row of the tabular output
var CSVHeader = []string{"callsign", "fullname", "firstname", "lastname", "address", "city", "state", "zipcode"}

// Files writes <prefix>_<date>.json and <prefix>_<date>.csv into Dir.
// A second run on the same date appends to the existing set so both files stay in step
type Files struct {
	Dir    string
	Prefix string
}

var _ domain.Sink = Files{}

// NewFiles returns a Files sink, prefix "matches" when empty
func NewFiles(dir, prefix string) Files {
	if prefix == "" {
		prefix = "matches"
	}
	return Files{Dir: dir, Prefix: prefix}
}

// Name implements domain.Sink
func (Files) Name() string { return "files" }

// JSONPath is the structured output path for date
func (f Files) JSONPath(date string) string {
	return filepath.Join(f.Dir, fmt.Sprintf("%s_%s.json", f.Prefix, date))
}

// CSVPath is the tabular output path for date
func (f Files) CSVPath(date string) string {
	return filepath.Join(f.Dir, fmt.Sprintf("%s_%s.csv", f.Prefix, date))
}

// Persist merges rs into any existing set for runDate and rewrites both files
func (f Files) Persist(ctx context.Context, runDate string, rs domain.ResultSet) (string, error) {
	prior, err := f.Read(runDate)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return "", err
	}
	all := append(prior, rs...)

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "create output dir %s", f.Dir)
	}
	jp := f.JSONPath(runDate)
	if err := writeFile(jp, func(w io.Writer) error { return WriteJSON(w, all) }); err != nil {
		return "", err
	}
	cp := f.CSVPath(runDate)
	if err := writeFile(cp, func(w io.Writer) error { return WriteCSV(w, all) }); err != nil {
		return "", err
	}
	logger.C(ctx).Info().Str("json", jp).Str("csv", cp).Int("records", len(all)).Int("prior", len(prior)).Msg("result set written")
	return jp, nil
}

// Read loads the persisted set for date; a missing file is not found
func (f Files) Read(date string) (domain.ResultSet, error) {
	p := f.JSONPath(date)
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, perr.NotFoundf("no result set for %s", date)
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodePersistence, "read %s", p)
	}
	var rs domain.ResultSet
	if err := json.Unmarshal(b, &rs); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodePersistence, "decode %s", p)
	}
	return rs, nil
}

// WriteJSON encodes rs as an indented JSON array
func WriteJSON(w io.Writer, rs domain.ResultSet) error {
	if rs == nil {
		rs = domain.ResultSet{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(rs)
}

// WriteCSV writes the header row then one row per record
func WriteCSV(w io.Writer, rs domain.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range rs {
		if err := cw.Write([]string{r.Callsign, r.FullName, r.FirstName, r.LastName, r.Address, r.City, r.State, r.ZipCode}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeFile renders into a temp sibling, syncs and renames over path
func writeFile(path string, render func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "create temp for %s", path)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := render(tmp); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodePersistence, "write %s", path)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodePersistence, "sync %s", path)
	}
	if err := tmp.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "close %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "chmod %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "rename into %s", path)
	}
	return nil
}
