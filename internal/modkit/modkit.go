package modkit

import (
	phttp "hamfinder/internal/platform/net/http"
)

// Module is the common surface for API modules that mount routes
type Module interface {
	// MountRoutes mounts HTTP routes under the provided router seam
	MountRoutes(r phttp.Router)
	// Name returns the module name
	Name() string
}

// Mount attaches m to r under the configured prefix with its middleware
func Mount(r phttp.Router, m Module, opts ...Option) {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	attach := func(sr phttp.Router) {
		if len(c.mw) > 0 {
			sr.Use(c.mw...)
		}
		m.MountRoutes(sr)
	}
	if c.prefix == "" || c.prefix == "/" {
		r.Group(attach)
		return
	}
	r.Route(c.prefix, attach)
}
