// Package detect classifies fetched artifacts as new or already seen by content fingerprint
package detect

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/logger"
	"hamfinder/internal/services/ingest/domain"
)

// Digest names a supported fingerprint algorithm
type Digest string

const (
	// MD5 is 128 bit and matches ledgers written by earlier tooling
	MD5 Digest = "md5"
	// SHA256 is the stronger option for new deployments
	SHA256 Digest = "sha256"
)

// Detector hashes artifacts and gates them through the ledger
type Detector struct {
	ledger domain.Ledger
	digest Digest
}

var _ domain.Detector = (*Detector)(nil)

// New returns a Detector using digest, md5 when empty
func New(l domain.Ledger, digest Digest) *Detector {
	if digest == "" {
		digest = MD5
	}
	return &Detector{ledger: l, digest: digest}
}

func (d *Detector) newHash() (hash.Hash, error) {
	switch d.digest {
	case MD5:
		return md5.New(), nil
	case SHA256:
		return sha256.New(), nil
	default:
		return nil, perr.InvalidArgf("detect: unsupported digest %q", d.digest)
	}
}

// Fingerprint returns the hex digest of the full content at path
func (d *Detector) Fingerprint(path string) (string, error) {
	h, err := d.newHash()
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "open artifact %s", path)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(h, f); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "read artifact %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Classify fingerprints the artifact and records it when new.
// The ledger write happens here, before any extraction
func (d *Detector) Classify(ctx context.Context, artifactPath string, src domain.Source, runDate string) (domain.Verdict, string, error) {
	fp, err := d.Fingerprint(artifactPath)
	if err != nil {
		return 0, "", err
	}
	log := logger.C(ctx).With().Str("fingerprint", fp).Logger()

	seen, err := d.ledger.HasSeen(ctx, fp)
	if err != nil {
		return 0, fp, err
	}
	if seen {
		log.Info().Msg("artifact already seen")
		return domain.VerdictAlreadySeen, fp, nil
	}

	err = d.ledger.Record(ctx, domain.LedgerEntry{Fingerprint: fp, RunDate: runDate, SourceName: src.Name})
	if perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		// another run recorded it between lookup and insert
		log.Warn().Msg("fingerprint recorded concurrently; treating as seen")
		return domain.VerdictAlreadySeen, fp, nil
	}
	if err != nil {
		return 0, fp, err
	}
	log.Info().Msg("artifact is new")
	return domain.VerdictNew, fp, nil
}
