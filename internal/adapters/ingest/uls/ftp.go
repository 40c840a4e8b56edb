package uls

import (
	"context"
	"io"
	"net"
	"net/url"
	"path"
	"time"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/logger"
	"hamfinder/internal/services/ingest/domain"

	"github.com/jlaffaye/ftp"
)

// ftpConn is the slice of *ftp.ServerConn the fetcher uses
type ftpConn interface {
	Login(user, password string) error
	Retr(path string) (io.ReadCloser, error)
	Quit() error
}

type serverConn struct{ c *ftp.ServerConn }

func (s serverConn) Login(user, password string) error { return s.c.Login(user, password) }
func (s serverConn) Quit() error                       { return s.c.Quit() }

func (s serverConn) Retr(p string) (io.ReadCloser, error) {
	r, err := s.c.Retr(p)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// dialFTP is a seam for tests
var dialFTP = func(ctx context.Context, addr string) (ftpConn, error) {
	c, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return nil, err
	}
	return serverConn{c: c}, nil
}

// FTPFetcher retrieves artifacts over FTP, anonymously unless the URL carries credentials
type FTPFetcher struct {
	Base *url.URL
}

// NewFTPFetcher builds an FTPFetcher for an ftp:// base
func NewFTPFetcher(base *url.URL) *FTPFetcher { return &FTPFetcher{Base: base} }

func (f *FTPFetcher) addr() string {
	if f.Base.Port() != "" {
		return f.Base.Host
	}
	return net.JoinHostPort(f.Base.Hostname(), "21")
}

func (f *FTPFetcher) credentials() (string, string) {
	if f.Base.User == nil {
		return "anonymous", "anonymous"
	}
	pw, _ := f.Base.User.Password()
	return f.Base.User.Username(), pw
}

// Fetch opens a control connection per artifact, retrieves it into dir and quits
func (f *FTPFetcher) Fetch(ctx context.Context, src domain.Source, dir string) (string, error) {
	dst, err := prepare(dir, src.Artifact)
	if err != nil {
		return "", err
	}
	remote := path.Join("/", f.Base.Path, src.Artifact)
	log := logger.C(ctx).With().Str("host", f.Base.Host).Str("path", remote).Logger()
	log.Info().Msg("downloading")

	c, err := dialFTP(ctx, f.addr())
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeFetch, "dial ftp %s", f.addr())
	}
	defer func() {
		if qerr := c.Quit(); qerr != nil {
			log.Debug().Err(qerr).Msg("ftp quit")
		}
	}()

	if err := c.Login(f.credentials()); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeFetch, "ftp login %s", f.Base.Host)
	}
	body, err := c.Retr(remote)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeFetch, "ftp RETR %s", remote)
	}
	_, werr := writeAtomic(dst, body)
	// closing the data connection reads the transfer completion reply
	if cerr := body.Close(); cerr != nil && werr == nil {
		_ = removeIfExists(dst)
		return "", perr.Wrapf(cerr, perr.ErrorCodeFetch, "ftp RETR %s", remote)
	}
	if werr != nil {
		return "", werr
	}
	return dst, nil
}
