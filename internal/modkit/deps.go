// Package modkit provides module wiring and core deps
package modkit

import (
	"hamfinder/internal/modkit/repokit"
	"hamfinder/internal/platform/config"
	"hamfinder/internal/platform/logger"
	"hamfinder/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// PG and CH are nil unless the corresponding backend was enabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// FromStore builds Deps from an opened Store
func FromStore(log logger.Logger, cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG = st.PG
		d.CH = st.CH
	}
	return d
}
