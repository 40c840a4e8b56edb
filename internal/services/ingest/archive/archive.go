// Package archive relocates consumed artifacts to dated, source named paths
package archive

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/logger"
	"hamfinder/internal/services/ingest/domain"
)

// Archiver moves artifacts into Dir. An occupied destination is an archival conflict
type Archiver struct {
	Dir string
}

var _ domain.Archiver = Archiver{}

// New returns an Archiver rooted at dir
func New(dir string) Archiver { return Archiver{Dir: dir} }

// Path is the destination for src on date: l_am_mon.zip on 2024-05-06 becomes <dir>/l_am_mon_2024-05-06.zip
func (a Archiver) Path(src domain.Source, date string) string {
	ext := filepath.Ext(src.Artifact)
	stem := strings.TrimSuffix(src.Artifact, ext)
	return filepath.Join(a.Dir, stem+"_"+date+ext)
}

// Archive relocates artifactPath without ever replacing an existing archive entry
func (a Archiver) Archive(ctx context.Context, artifactPath string, src domain.Source, date string) (string, error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "create archive dir %s", a.Dir)
	}
	dst := a.Path(src, date)

	// a hard link fails on an existing name, so the check and the move are one step
	err := os.Link(artifactPath, dst)
	if err != nil && !errors.Is(err, fs.ErrExist) {
		err = copyExclusive(artifactPath, dst)
	}
	if errors.Is(err, fs.ErrExist) {
		return "", perr.ArchivalConflictf("archive %s already exists", dst)
	}
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "archive %s", artifactPath)
	}
	if err := os.Remove(artifactPath); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "remove archived artifact %s", artifactPath)
	}
	logger.C(ctx).Info().Str("to", dst).Msg("artifact archived")
	return dst, nil
}

// copyExclusive covers links across filesystems
func copyExclusive(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(to)
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(to)
		return err
	}
	return out.Close()
}
