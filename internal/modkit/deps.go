// Package modkit provides module wiring and core deps
package modkit

import (
	"paygate/internal/modkit/repokit"
	"paygate/internal/platform/config"
	"paygate/internal/platform/logger"
	"paygate/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf

	// SQL is the primary relational seam (postgres or embedded sqlite)
	SQL     repokit.TxRunner
	Dialect store.Dialect

	// CH is optional; nil disables analytics writes
	CH store.Clickhouse
}

// FromStore fills the storage seams from an opened store
func FromStore(log logger.Logger, cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.SQL = st.SQL()
		d.Dialect = st.Dialect()
		d.CH = st.CH
	}
	return d
}
