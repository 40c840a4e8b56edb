// Package module wires meta endpoints into the API
package module

import (
	"time"

	"hamfinder/internal/modkit"
	phttp "hamfinder/internal/platform/net/http"
	metahttp "hamfinder/internal/services/api/meta/http"
)

// Module implements modkit.Module
type Module struct {
	deps      modkit.Deps
	service   string
	startedAt time.Time
}

var _ modkit.Module = (*Module)(nil)

// New constructs a meta module for the named service
func New(deps modkit.Deps, service string) *Module {
	return &Module{deps: deps, service: service, startedAt: time.Now()}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	d := metahttp.Deps{ServiceName: m.service, StartedAt: m.startedAt}
	// typed nil interfaces would read as configured
	if m.deps.PG != nil {
		d.PG = m.deps.PG
	}
	if m.deps.CH != nil {
		d.CH = m.deps.CH
	}
	metahttp.Register(r, d)
}

// Name implements modkit.Module
func (m *Module) Name() string { return "meta" }
