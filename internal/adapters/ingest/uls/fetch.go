package uls

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/logger"
	"hamfinder/internal/services/ingest/domain"
)

// DefaultBaseURL is the FCC daily directory over HTTPS
const DefaultBaseURL = "https://data.fcc.gov/download/pub/uls/daily/"

// NewFetcher returns an HTTP or FTP fetcher for base
func NewFetcher(base *url.URL) (domain.Fetcher, error) {
	if base == nil {
		return nil, perr.InvalidArgf("uls: nil base url")
	}
	switch strings.ToLower(base.Scheme) {
	case "http", "https":
		return NewHTTPFetcher(base, nil), nil
	case "ftp":
		return NewFTPFetcher(base), nil
	default:
		return nil, perr.InvalidArgf("uls: unsupported scheme %q", base.Scheme)
	}
}

// HTTPFetcher downloads artifacts with a plain GET
type HTTPFetcher struct {
	Base   *url.URL
	Client *http.Client
}

// NewHTTPFetcher builds an HTTPFetcher; a nil client means no client timeout
func NewHTTPFetcher(base *url.URL, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{Base: base, Client: client}
}

// Fetch downloads src.Artifact into dir, replacing any stale copy
func (f *HTTPFetcher) Fetch(ctx context.Context, src domain.Source, dir string) (string, error) {
	dst, err := prepare(dir, src.Artifact)
	if err != nil {
		return "", err
	}
	u := f.Base.JoinPath(src.Artifact).String()
	logger.C(ctx).Info().Str("url", u).Msg("downloading")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeFetch, "build request %s", u)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeFetch, "GET %s", u)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", perr.Fetchf("GET %s: unexpected status %d", u, resp.StatusCode)
	}
	if _, err := writeAtomic(dst, resp.Body); err != nil {
		return "", err
	}
	return dst, nil
}

// prepare ensures dir exists and removes a leftover artifact from an earlier run
func prepare(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "create download dir %s", dir)
	}
	dst := filepath.Join(dir, name)
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "remove stale artifact %s", dst)
	}
	return dst, nil
}

// writeAtomic streams body into path via a .part sibling so a broken transfer never leaves a partial artifact
func writeAtomic(path string, body io.Reader) (int64, error) {
	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodePersistence, "create %s", tmp)
	}
	defer func() { _ = os.Remove(tmp) }()

	n, werr := io.Copy(out, body)
	cerr := out.Close()
	if werr != nil {
		// the body is the network side
		return 0, perr.Wrapf(werr, perr.ErrorCodeFetch, "download %s", filepath.Base(path))
	}
	if cerr != nil {
		return 0, perr.Wrapf(cerr, perr.ErrorCodePersistence, "close %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodePersistence, "rename %s", tmp)
	}
	return n, nil
}
