// Command hamfinder-api serves the ingest ledger and dated match sets read only
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hamfinder/internal/modkit"
	"hamfinder/internal/modkit/repokit"
	"hamfinder/internal/platform/config"
	"hamfinder/internal/platform/logger"
	phttp "hamfinder/internal/platform/net/http"
	"hamfinder/internal/platform/store"

	"hamfinder/internal/services/api"
	historymod "hamfinder/internal/services/api/history/module"
	histhttp "hamfinder/internal/services/api/history/http"
	ingestmod "hamfinder/internal/services/ingest/module"
	"hamfinder/internal/services/ingest/ledger"
	"hamfinder/internal/services/ingest/output"
)

func main() {
	lopt := logger.FromEnv()
	if lopt.Component == "" {
		lopt.Component = "api"
	}
	logger.Init(lopt)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	// the api reads what the ingest run writes, so it shares its settings
	ing := ingestmod.FromConfig(root)

	st, err := store.Open(ctx, store.ConfigFromEnv(root, "hamfinder-api", ing.NeedsPG(), ing.NeedsCH()), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	var entries histhttp.EntryLister = ledger.View{Path: ing.LedgerPath}
	if ing.NeedsPG() {
		pg, err := ledger.OpenPG(ctx, st.PG)
		if err != nil {
			l.Panic().Err(err).Msg("ledger open failed")
		}
		entries = pg
	}

	srv := phttp.NewServer(root)

	opts := api.OptionsFromConfig(root)
	opts.Deps = modkit.FromStore(*l, root, st)
	opts.History = historymod.Ports{
		Ledger:  entries,
		Matches: output.NewFiles(ing.OutputDir, ing.OutputPrefix),
	}
	api.Mount(srv.Router(), opts)

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
