// Package ledger holds the durable fingerprint history backends
package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/logger"
	"hamfinder/internal/services/ingest/domain"
)

// File is a CSV append only ledger with rows run-date,source-name,fingerprint.
// History is read in full at open; the append handle is opened on first Record
type File struct {
	path string

	mu      sync.Mutex
	seen    map[string]struct{}
	entries []domain.LedgerEntry
	f       *os.File
	w       *csv.Writer
}

var _ domain.Ledger = (*File)(nil)

// OpenFile reads the ledger at path. A missing file is an empty history
func OpenFile(path string) (*File, error) {
	l := &File{path: path, seen: map[string]struct{}{}}
	if err := l.load(); err != nil {
		return nil, err
	}
	logger.Named("ledger").Debug().Str("path", path).Int("entries", len(l.entries)).Msg("ledger loaded")
	return l, nil
}

func (l *File) load() error {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "open ledger %s", l.path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodePersistence, "read ledger %s", l.path)
		}
		if len(row) < 3 || row[2] == "" {
			line, _ := r.FieldPos(0)
			return perr.Persistencef("ledger %s line %d: want run-date,source,fingerprint", l.path, line)
		}
		l.index(domain.LedgerEntry{RunDate: row[0], SourceName: row[1], Fingerprint: row[2]})
	}
}

func (l *File) index(e domain.LedgerEntry) {
	l.seen[e.Fingerprint] = struct{}{}
	l.entries = append(l.entries, e)
}

// HasSeen reports whether fingerprint is present, including entries recorded in this run
func (l *File) HasSeen(_ context.Context, fingerprint string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[fingerprint]
	return ok, nil
}

// Record appends e, flushes and syncs it before updating the index
func (l *File) Record(ctx context.Context, e domain.LedgerEntry) error {
	if e.Fingerprint == "" {
		return perr.InvalidArgf("ledger: empty fingerprint")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.seen[e.Fingerprint]; dup {
		return perr.DuplicateKeyf("ledger: fingerprint %s already recorded", e.Fingerprint)
	}
	if err := l.openAppend(); err != nil {
		return err
	}
	if err := l.w.Write([]string{e.RunDate, e.SourceName, e.Fingerprint}); err != nil {
		return perr.Wrap(err, perr.ErrorCodePersistence, "append ledger")
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return perr.Wrap(err, perr.ErrorCodePersistence, "flush ledger")
	}
	if err := l.f.Sync(); err != nil {
		return perr.Wrap(err, perr.ErrorCodePersistence, "sync ledger")
	}
	l.index(e)
	logger.C(ctx).Debug().Str("fingerprint", e.Fingerprint).Str("source", e.SourceName).Msg("ledger recorded")
	return nil
}

func (l *File) openAppend() error {
	if l.f != nil {
		return nil
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return perr.Wrapf(err, perr.ErrorCodePersistence, "create ledger dir %s", dir)
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "open ledger %s for append", l.path)
	}
	if err := terminateLastRow(f, l.path); err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	l.w = csv.NewWriter(f)
	return nil
}

// terminateLastRow appends a newline to f when the ledger's last row lacks one,
// so a torn write never merges with the next row
func terminateLastRow(f *os.File, path string) error {
	fi, err := f.Stat()
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "stat ledger %s", path)
	}
	if fi.Size() == 0 {
		return nil
	}
	r, err := os.Open(path)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "open ledger %s", path)
	}
	defer func() { _ = r.Close() }()
	last := make([]byte, 1)
	if _, err := r.ReadAt(last, fi.Size()-1); err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "read ledger tail %s", path)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := f.WriteString("\n"); err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "terminate ledger %s", path)
	}
	return nil
}

// Entries returns a copy of all entries in file order
func (l *File) Entries(context.Context) ([]domain.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.LedgerEntry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

// Close releases the append handle
func (l *File) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f, l.w = nil, nil
	return perr.WrapIf(err, perr.ErrorCodePersistence, "close ledger")
}

// View reads the ledger file afresh on every call, for processes that only observe history
type View struct{ Path string }

// Entries implements the read side of domain.Ledger
func (v View) Entries(ctx context.Context) ([]domain.LedgerEntry, error) {
	f, err := OpenFile(v.Path)
	if err != nil {
		return nil, err
	}
	return f.Entries(ctx)
}
