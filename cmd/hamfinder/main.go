// Command hamfinder runs one incremental ingestion pass over the FCC daily licence files
// and prints how many newly licensed individuals fall inside the eligible area
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"hamfinder/internal/modkit"
	"hamfinder/internal/modkit/repokit"
	"hamfinder/internal/platform/config"
	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/logger"
	"hamfinder/internal/platform/store"

	ingestmod "hamfinder/internal/services/ingest/module"
)

// Exit codes by error kind
const (
	exitOK               = 0
	exitUnknown          = 1
	exitFetch            = 2
	exitPersistence      = 3
	exitMalformed        = 4
	exitArchivalConflict = 5
)

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeFetch:
		return exitFetch
	case perr.ErrorCodePersistence, perr.ErrorCodeDB, perr.ErrorCodeDuplicateKey, perr.ErrorCodeUnavailable, perr.ErrorCodeConflict:
		return exitPersistence
	case perr.ErrorCodeMalformedRecord:
		return exitMalformed
	case perr.ErrorCodeArchivalConflict:
		return exitArchivalConflict
	default:
		return exitUnknown
	}
}

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func printSummary(w io.Writer, total int) {
	_, _ = fmt.Fprintf(w, "Total new hams in eligible area: %d\n", total)
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		fSources = flag.String("sources", "", "comma separated source names, overrides CORE_INGEST_SOURCES")
		fBaseURL = flag.String("base-url", "", "http(s) or ftp base url, overrides CORE_INGEST_BASE_URL")
		fLedger  = flag.String("ledger", "", "ledger backend file|pg, overrides CORE_LEDGER_BACKEND")
		fStdout  = flag.Bool("print", false, "also print the result set as JSON on stdout")
	)
	flag.Parse()

	mustSetEnv("CORE_INGEST_SOURCES", *fSources)
	mustSetEnv("CORE_INGEST_BASE_URL", *fBaseURL)
	mustSetEnv("CORE_LEDGER_BACKEND", *fLedger)
	if *fStdout {
		mustSetEnv("CORE_OUTPUT_STDOUT", "true")
	}

	lopt := logger.FromEnv()
	if lopt.Component == "" {
		lopt.Component = "ingest"
	}
	logger.Init(lopt)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	opts := ingestmod.FromConfig(root)

	st, err := store.Open(ctx, store.ConfigFromEnv(root, "hamfinder", opts.NeedsPG(), opts.NeedsCH()), store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return exitPersistence
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	if err := repokit.Guard(ctx, st); err != nil {
		l.Error().Err(err).Msg("backend not reachable")
		return exitCode(err)
	}

	m, err := ingestmod.New(ctx, modkit.FromStore(*l, root, st), opts)
	if err != nil {
		l.Error().Err(err).Msg("ingest module wiring failed")
		return exitCode(err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close ingest module")
		}
	}()

	sum, runErr := m.Ports().Runner.Run(ctx)

	if err := m.WriteMetrics(); err != nil {
		l.Warn().Err(err).Msg("metrics textfile not written")
	}
	if runErr != nil {
		return exitCode(runErr)
	}
	printSummary(os.Stdout, sum.Total)
	return exitOK
}
