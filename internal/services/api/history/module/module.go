// Package module wires the history endpoints into the API
package module

import (
	"hamfinder/internal/modkit"
	phttp "hamfinder/internal/platform/net/http"
	histhttp "hamfinder/internal/services/api/history/http"
)

// Ports are the read sides the module serves
type Ports struct {
	Ledger  histhttp.EntryLister
	Matches histhttp.MatchReader
}

// Module implements modkit.Module
type Module struct {
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New constructs the history module; both ports are required
func New(p Ports) *Module {
	if p.Ledger == nil || p.Matches == nil {
		panic("history module requires ledger and matches ports")
	}
	return &Module{ports: p}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	histhttp.Register(r, histhttp.Deps{Ledger: m.ports.Ledger, Matches: m.ports.Matches})
}

// Name implements modkit.Module
func (m *Module) Name() string { return "history" }
