// Package http serves the ledger and dated match sets read only
package http

import (
	"context"
	"net/http"

	perr "hamfinder/internal/platform/errors"
	phttp "hamfinder/internal/platform/net/http"
	"hamfinder/internal/platform/net/http/bind"
	"hamfinder/internal/services/ingest/domain"
)

// EntryLister is the read side of a ledger
type EntryLister interface {
	Entries(ctx context.Context) ([]domain.LedgerEntry, error)
}

// MatchReader loads the persisted result set for a run date
type MatchReader interface {
	Read(date string) (domain.ResultSet, error)
}

// Deps are the handler dependencies
type Deps struct {
	Ledger  EntryLister
	Matches MatchReader
}

type handlers struct{ deps Deps }

// Register mounts the history routes
func Register(r phttp.Router, d Deps) {
	h := &handlers{deps: d}
	r.Get("/ledger", phttp.Handle(h.ledger))
	r.Get("/matches/{date}", phttp.Handle(h.matches))
}

// ledger lists entries in record order, optionally narrowed by ?source= or ?run_date=
func (h *handlers) ledger(r *http.Request) phttp.Response {
	q := r.URL.Query()
	source, runDate := q.Get("source"), q.Get("run_date")
	if source != "" {
		if err := bind.Var("source", source, "weekday"); err != nil {
			return phttp.Error(err)
		}
	}
	if runDate != "" {
		if err := bind.Var("run_date", runDate, "datetime=2006-01-02"); err != nil {
			return phttp.Error(err)
		}
	}

	all, err := h.deps.Ledger.Entries(r.Context())
	if err != nil {
		return phttp.Error(err)
	}
	out := make([]domain.LedgerEntry, 0, len(all))
	for _, e := range all {
		if source != "" && e.SourceName != source {
			continue
		}
		if runDate != "" && e.RunDate != runDate {
			continue
		}
		out = append(out, e)
	}
	return phttp.List(out)
}

func (h *handlers) matches(r *http.Request) phttp.Response {
	date, err := bind.PathParam(r, "date", "required,datetime=2006-01-02")
	if err != nil {
		return phttp.Error(err)
	}
	rs, err := h.deps.Matches.Read(date)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return phttp.NotFound("no matches recorded for " + date)
	}
	if err != nil {
		return phttp.Error(err)
	}
	return phttp.List([]domain.HamRecord(rs))
}
