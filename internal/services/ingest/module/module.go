// Package module wires the ingest service from configuration
package module

import (
	"context"
	"io"
	"os"

	"hamfinder/internal/adapters/ingest/uls"
	"hamfinder/internal/modkit"
	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/services/ingest/archive"
	"hamfinder/internal/services/ingest/detect"
	"hamfinder/internal/services/ingest/domain"
	"hamfinder/internal/services/ingest/extract"
	"hamfinder/internal/services/ingest/geo"
	"hamfinder/internal/services/ingest/guardrails"
	"hamfinder/internal/services/ingest/ledger"
	"hamfinder/internal/services/ingest/metrics"
	"hamfinder/internal/services/ingest/output"
	"hamfinder/internal/services/ingest/service"
)

// Ports defines the ingest module ports
type Ports struct {
	Runner domain.RunnerPort
	Ledger domain.Ledger
}

// Module implements the ingest module
type Module struct {
	deps    modkit.Deps
	opts    Options
	ports   Ports
	metrics *metrics.Metrics
	closers []io.Closer
}

// New validates opts and wires adapters and the service.
// deps.PG and deps.CH are only used when opts asks for them
func New(ctx context.Context, deps modkit.Deps, opts Options) (*Module, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m := &Module{deps: deps, opts: opts, metrics: metrics.New()}

	l, err := m.openLedger(ctx)
	if err != nil {
		return nil, err
	}

	fetch, err := uls.NewFetcher(opts.BaseURL)
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	sinks, err := m.sinks(ctx, os.Stdout)
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	sources := make([]domain.Source, 0, len(opts.Sources))
	for _, name := range opts.Sources {
		sources = append(sources, domain.NewSource(name, opts.ArtifactPattern))
	}

	svc := service.New(
		fetch,
		detect.New(l, detect.Digest(opts.Digest)),
		uls.NewUnpacker(),
		extract.New(),
		geo.NewLazy(opts.ZipcodesPath),
		archive.New(opts.ArchiveDir),
		sinks,
		service.Config{
			Sources: sources,
			Member:  opts.Member,
			WorkDir: opts.WorkDir,
			TmpDir:  opts.TmpDir,
			Timeouts: guardrails.Timeouts{
				Run:     opts.RunTimeout,
				Fetch:   opts.FetchTimeout,
				Persist: opts.PersistTimeout,
			},
		},
	)
	svc.Metrics = m.metrics

	m.ports = Ports{Runner: svc, Ledger: l}
	return m, nil
}

func (m *Module) openLedger(ctx context.Context) (domain.Ledger, error) {
	if m.opts.NeedsPG() {
		return ledger.OpenPG(ctx, m.deps.PG)
	}
	f, err := ledger.OpenFile(m.opts.LedgerPath)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, f)
	return f, nil
}

// sinks always includes the dated files; stdout and clickhouse are opt in
func (m *Module) sinks(ctx context.Context, stdout io.Writer) ([]domain.Sink, error) {
	out := []domain.Sink{output.NewFiles(m.opts.OutputDir, m.opts.OutputPrefix)}
	if m.opts.Stdout {
		out = append(out, output.Writer{W: stdout})
	}
	if m.opts.NeedsCH() {
		ch, err := output.NewClickHouse(ctx, m.deps.CH, m.opts.CHTable)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

// Name returns the module name
func (m *Module) Name() string { return "ingest" }

// Ports returns the module ports
func (m *Module) Ports() Ports { return m.ports }

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }

// Metrics returns the run collectors
func (m *Module) Metrics() *metrics.Metrics { return m.metrics }

// WriteMetrics writes the textfile when one is configured
func (m *Module) WriteMetrics() error {
	if m.opts.MetricsTextfile == "" {
		return nil
	}
	return m.metrics.WriteTextfile(m.opts.MetricsTextfile)
}

// Close releases the file ledger handle if one was opened
func (m *Module) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = perr.Wrap(err, perr.ErrorCodePersistence, "close ingest module")
		}
	}
	m.closers = nil
	return first
}
