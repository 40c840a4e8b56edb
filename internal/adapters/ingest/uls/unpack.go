package uls

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/logger"
	"hamfinder/internal/services/ingest/domain"

	"github.com/klauspost/compress/zip"
)

// Unpacker extracts a single member from a daily archive
type Unpacker struct{}

var _ domain.Unpacker = Unpacker{}

// NewUnpacker returns an Unpacker
func NewUnpacker() Unpacker { return Unpacker{} }

// Unpack writes member from the zip at archivePath into dir and restores its recorded mtime.
// The member is matched by base name, case-insensitively. A corrupt archive or a missing
// member is a malformed record error
func (Unpacker) Unpack(ctx context.Context, archivePath, member, dir string) (string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, io.ErrUnexpectedEOF) {
			return "", perr.Wrapf(err, perr.ErrorCodeMalformedRecord, "open archive %s", archivePath)
		}
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "open archive %s", archivePath)
	}
	defer func() { _ = zr.Close() }()

	var zf *zip.File
	for _, f := range zr.File {
		if strings.EqualFold(path.Base(f.Name), member) {
			zf = f
			break
		}
	}
	if zf == nil {
		return "", perr.Malformedf("archive %s has no %s member", archivePath, member)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "create work dir %s", dir)
	}
	dst := filepath.Join(dir, path.Base(zf.Name))

	rc, err := zf.Open()
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeMalformedRecord, "open member %s", zf.Name)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "create %s", dst)
	}
	n, werr := io.Copy(out, rc)
	cerr := out.Close()
	if werr != nil {
		_ = removeIfExists(dst)
		return "", perr.Wrapf(werr, perr.ErrorCodeMalformedRecord, "inflate %s", zf.Name)
	}
	if cerr != nil {
		return "", perr.Wrapf(cerr, perr.ErrorCodePersistence, "close %s", dst)
	}

	mt := publisherClock(zf.Modified)
	if !mt.IsZero() {
		if err := os.Chtimes(dst, mt, mt); err != nil {
			return "", perr.Wrapf(err, perr.ErrorCodePersistence, "restore mtime %s", dst)
		}
	}
	logger.C(ctx).Debug().Str("member", zf.Name).Int64("bytes", n).Time("modified", mt).Msg("unpacked")
	return dst, nil
}

// publisherClock re-reads the header's wall clock as local time.
// A DOS-only header carries the publisher's wall clock labelled UTC and an extended
// timestamp is shown in the publisher's offset, so in both cases the calendar fields
// are the publisher's and the local date of the result matches the header's date
func publisherClock(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, mo, d := t.Date()
	h, mi, sec := t.Clock()
	return time.Date(y, mo, d, h, mi, sec, 0, time.Local)
}

func removeIfExists(p string) error {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
