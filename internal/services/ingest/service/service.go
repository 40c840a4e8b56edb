// Package service drives one ingestion run over the configured sources
package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/logger"
	ptime "hamfinder/internal/platform/time"
	"hamfinder/internal/services/ingest/domain"
	"hamfinder/internal/services/ingest/geo"
	"hamfinder/internal/services/ingest/guardrails"
	"hamfinder/internal/services/ingest/metrics"

	"github.com/google/uuid"
)

// Config holds run level settings
type Config struct {
	// Sources are processed strictly in this order
	Sources []domain.Source

	// Member is the entity file inside each archive
	Member string

	// WorkDir receives downloads; TmpDir is the unpack area, removed after each source
	WorkDir string
	TmpDir  string

	Timeouts guardrails.Timeouts
}

// Service implements domain.RunnerPort. It holds no state between runs;
// each Run owns its result set
type Service struct {
	Fetch   domain.Fetcher
	Detect  domain.Detector
	Unpack  domain.Unpacker
	Extract domain.Extractor
	Geo     domain.GeoLoader
	Archive domain.Archiver
	Sinks   []domain.Sink
	Cfg     Config

	// Metrics is optional
	Metrics *metrics.Metrics

	Now   func() time.Time
	NewID func() string
}

var _ domain.RunnerPort = (*Service)(nil)

// New constructs the service; every collaborator except sinks is required
func New(
	f domain.Fetcher,
	d domain.Detector,
	u domain.Unpacker,
	x domain.Extractor,
	g domain.GeoLoader,
	a domain.Archiver,
	sinks []domain.Sink,
	cfg Config,
) *Service {
	if f == nil || d == nil || u == nil || x == nil || g == nil || a == nil {
		panic("ingest.Service requires fetch, detect, unpack, extract, geo and archive collaborators")
	}
	if cfg.Member == "" {
		cfg.Member = "EN.dat"
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	if cfg.TmpDir == "" {
		cfg.TmpDir = "tmp"
	}
	return &Service{
		Fetch: f, Detect: d, Unpack: u, Extract: x, Geo: g, Archive: a,
		Sinks: sinks, Cfg: cfg,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Run processes every source then persists the accumulated set if it is non empty.
// Any error aborts the run and nothing is persisted
func (s *Service) Run(ctx context.Context) (sum domain.Summary, err error) {
	start := s.Now()
	sum = domain.Summary{RunID: s.NewID(), RunDate: ptime.Date(start)}
	ctx = logger.WithRun(ctx, sum.RunID)
	log := logger.C(ctx)

	ctx, cancel := guardrails.ForRun(ctx, s.Cfg.Timeouts)
	defer cancel()

	defer func() {
		if s.Metrics != nil {
			s.Metrics.Finish(sum, s.Now().Sub(start), s.Now(), err)
		}
		if err != nil {
			log.Error().Err(err).Str("kind", perr.CodeOf(err).String()).Msg("run aborted")
		}
	}()

	log.Info().Str("run_date", sum.RunDate).Int("sources", len(s.Cfg.Sources)).Msg("run started")

	var rs domain.ResultSet
	for _, src := range s.Cfg.Sources {
		sctx := logger.WithSource(ctx, src.Name)
		out, kept, err := s.runSource(sctx, src, sum.RunDate)
		if err != nil {
			return sum, perr.WithOp(err, src.Name)
		}
		if s.Metrics != nil {
			s.Metrics.Source(out)
		}
		sum.Sources = append(sum.Sources, out)
		rs = append(rs, kept...)
	}
	sum.Total = len(rs)

	if len(rs) == 0 {
		log.Info().Msg("no eligible records; nothing persisted")
		return sum, nil
	}
	outputs, err := s.persist(ctx, sum.RunDate, rs)
	if err != nil {
		return sum, err
	}
	sum.Outputs = outputs
	log.Info().Int("total", sum.Total).Strs("outputs", outputs).Msg("run finished")
	return sum, nil
}

func (s *Service) runSource(ctx context.Context, src domain.Source, runDate string) (domain.SourceOutcome, domain.ResultSet, error) {
	out := domain.SourceOutcome{Source: src.Name}
	log := logger.C(ctx)

	path, err := s.fetch(ctx, src)
	if err != nil {
		return out, nil, err
	}

	t := time.Now()
	verdict, fp, err := s.Detect.Classify(ctx, path, src, runDate)
	s.stage("classify", t)
	if err != nil {
		return out, nil, err
	}
	out.Verdict, out.Fingerprint = verdict, fp

	if verdict == domain.VerdictAlreadySeen {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return out, nil, perr.Wrapf(err, perr.ErrorCodePersistence, "discard %s", path)
		}
		log.Info().Msg("skipped; artifact discarded")
		return out, nil, nil
	}

	kept, dataDate, seen, err := s.extract(ctx, src, path)
	if err != nil {
		return out, nil, err
	}
	out.DataDate, out.Extracted, out.Matched = dataDate, seen, len(kept)

	t = time.Now()
	dst, err := s.Archive.Archive(ctx, path, src, dataDate)
	s.stage("archive", t)
	if err != nil {
		return out, nil, err
	}
	out.ArchivedTo = dst

	log.Info().Str("data_date", dataDate).Int("extracted", seen).Int("matched", len(kept)).Msg("source ingested")
	return out, kept, nil
}

func (s *Service) fetch(ctx context.Context, src domain.Source) (string, error) {
	fctx, cancel := guardrails.ForFetch(ctx, s.Cfg.Timeouts)
	defer cancel()
	t := time.Now()
	path, err := s.Fetch.Fetch(fctx, src, s.Cfg.WorkDir)
	s.stage("fetch", t)
	if err != nil && perr.CodeOf(err) == perr.ErrorCodeUnknown {
		err = perr.Wrapf(err, perr.ErrorCodeFetch, "fetch %s", src.Artifact)
	}
	return path, err
}

// extract unpacks, streams records through the geo filter and always removes the work dir
func (s *Service) extract(ctx context.Context, src domain.Source, path string) (domain.ResultSet, string, int, error) {
	t := time.Now()
	defer s.stage("extract", t)

	work := filepath.Join(s.Cfg.TmpDir, src.Name)
	defer func() {
		if err := os.RemoveAll(work); err != nil {
			logger.C(ctx).Warn().Err(err).Str("dir", work).Msg("work dir not removed")
		}
	}()

	member, err := s.Unpack.Unpack(ctx, path, s.Cfg.Member, work)
	if err != nil {
		return nil, "", 0, err
	}
	set, err := s.Geo.Load(ctx)
	if err != nil {
		return nil, "", 0, err
	}
	rr, err := s.Extract.Open(member)
	if err != nil {
		return nil, "", 0, err
	}
	defer func() { _ = rr.Close() }()

	kept, seen, err := geo.Stream(rr, set)
	if err != nil {
		return nil, "", seen, err
	}
	return kept, rr.Date(), seen, nil
}

func (s *Service) persist(ctx context.Context, runDate string, rs domain.ResultSet) ([]string, error) {
	pctx, cancel := guardrails.ForPersist(ctx, s.Cfg.Timeouts)
	defer cancel()
	t := time.Now()
	defer s.stage("persist", t)

	if len(s.Sinks) == 0 {
		logger.C(ctx).Warn().Int("records", len(rs)).Msg("no sinks configured; result set dropped")
		return nil, nil
	}
	outputs := make([]string, 0, len(s.Sinks))
	for _, sink := range s.Sinks {
		loc, err := sink.Persist(pctx, runDate, rs)
		if err != nil {
			if perr.CodeOf(err) == perr.ErrorCodeUnknown {
				err = perr.Wrapf(err, perr.ErrorCodePersistence, "sink %s", sink.Name())
			}
			return outputs, err
		}
		outputs = append(outputs, loc)
	}
	return outputs, nil
}

func (s *Service) stage(name string, since time.Time) {
	if s.Metrics != nil {
		s.Metrics.Stage(name, time.Since(since))
	}
}
