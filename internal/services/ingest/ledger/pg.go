package ledger

import (
	"context"
	"time"

	"hamfinder/internal/modkit/repokit"
	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/store"
	ptime "hamfinder/internal/platform/time"
	"hamfinder/internal/services/ingest/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS ingest_ledger (
	fingerprint text PRIMARY KEY,
	run_date    date NOT NULL,
	source_name text NOT NULL,
	recorded_at timestamptz NOT NULL DEFAULT now()
)`

// lockKey serialises writers across overlapping runs
const lockKey = "ingest_ledger"

// Repo is the SQL surface of the Postgres ledger
type Repo interface {
	Exists(ctx context.Context, fingerprint string) (bool, error)
	Insert(ctx context.Context, e domain.LedgerEntry, day time.Time) error
	List(ctx context.Context) ([]domain.LedgerEntry, error)
}

type (
	binder  struct{}
	queries struct{ q repokit.Queryer }
)

// NewRepo returns a Postgres binder for Repo
func NewRepo() repokit.Binder[Repo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Exists(ctx context.Context, fingerprint string) (bool, error) {
	return store.Scalar[bool](ctx, r.q,
		`SELECT EXISTS (SELECT 1 FROM ingest_ledger WHERE fingerprint = $1)`, fingerprint)
}

func (r *queries) Insert(ctx context.Context, e domain.LedgerEntry, day time.Time) error {
	return store.ExecOne(ctx, r.q, `
		INSERT INTO ingest_ledger (fingerprint, run_date, source_name)
		VALUES ($1, $2, $3)
	`, e.Fingerprint, day, e.SourceName)
}

func (r *queries) List(ctx context.Context) ([]domain.LedgerEntry, error) {
	return store.Many(ctx, r.q, func(row store.Row) (domain.LedgerEntry, error) {
		var e domain.LedgerEntry
		err := row.Scan(&e.Fingerprint, &e.RunDate, &e.SourceName)
		return e, err
	}, `
		SELECT fingerprint, to_char(run_date, 'YYYY-MM-DD'), source_name
		FROM ingest_ledger
		ORDER BY recorded_at, fingerprint
	`)
}

// PG is a Postgres backed ledger
type PG struct {
	db   repokit.TxRunner
	repo repokit.Binder[Repo]
}

var _ domain.Ledger = (*PG)(nil)

// OpenPG ensures the ledger table exists and returns the ledger
func OpenPG(ctx context.Context, db repokit.TxRunner) (*PG, error) {
	if db == nil {
		return nil, perr.Persistencef("ledger: postgres backend selected but no database configured")
	}
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return nil, persistence(err, "ensure ledger schema")
	}
	return &PG{db: db, repo: NewRepo()}, nil
}

// HasSeen reports whether fingerprint exists in ingest_ledger
func (p *PG) HasSeen(ctx context.Context, fingerprint string) (bool, error) {
	ok, err := repokit.MustBind(p.repo, p.db).Exists(ctx, fingerprint)
	if err != nil {
		return false, persistence(err, "ledger lookup")
	}
	return ok, nil
}

// Record inserts e under a transaction scoped advisory lock
func (p *PG) Record(ctx context.Context, e domain.LedgerEntry) error {
	if e.Fingerprint == "" {
		return perr.InvalidArgf("ledger: empty fingerprint")
	}
	day, err := ptime.ParseDate(e.RunDate)
	if err != nil {
		return perr.InvalidArgf("ledger: run date %q is not YYYY-MM-DD", e.RunDate)
	}
	tx := repokit.WithBeginHooks(p.db, repokit.AdvisoryXactLock(lockKey))
	err = repokit.WithTx(ctx, tx, func(q repokit.Queryer) error {
		return p.repo.Bind(q).Insert(ctx, e, day)
	})
	if err != nil {
		if perr.IsDuplicateKey(err) {
			return perr.Wrapf(err, perr.ErrorCodeDuplicateKey, "ledger: fingerprint %s already recorded", e.Fingerprint)
		}
		return persistence(err, "ledger record")
	}
	return nil
}

// Entries lists entries in insertion order
func (p *PG) Entries(ctx context.Context) ([]domain.LedgerEntry, error) {
	out, err := repokit.MustBind(p.repo, p.db).List(ctx)
	if err != nil {
		return nil, persistence(err, "ledger list")
	}
	return out, nil
}

// persistence keeps the SQLSTATE mapping in the chain under a persistence code
func persistence(err error, msg string) error {
	return perr.Wrap(perr.FromPostgres(err, "postgres"), perr.ErrorCodePersistence, msg)
}
