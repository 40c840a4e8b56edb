package modkit

import (
	"net/http"
)

// Option mutates mount configuration for a module
type Option func(*buildCfg)

type buildCfg struct {
	prefix string
	mw     []func(http.Handler) http.Handler
}

// WithPrefix mounts a module under a path prefix
func WithPrefix(prefix string) Option {
	return func(c *buildCfg) { c.prefix = prefix }
}

// WithMiddlewares attaches per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(c *buildCfg) { c.mw = append(c.mw, mw...) }
}
