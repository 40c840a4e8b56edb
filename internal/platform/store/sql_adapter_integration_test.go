//go:build integration_pg

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "hamfinder/internal/platform/errors"
	kit "hamfinder/internal/platform/testkit"
)

func TestPGAdapter_TxCommitAndRollback_Integration(t *testing.T) {
	dsn := kit.StartPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s, err := Open(ctx, Config{AppName: "hamfinder-it", PG: PGConfig{Enabled: true, URL: dsn, ConnectRetries: 20}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close(ctx)

	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard: %v", err)
	}
	if _, err := Exec(ctx, s.PG, `CREATE TABLE seen (fp text primary key)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := RunInTx(ctx, s.PG, func(ctx context.Context, q RowQuerier) error {
		return ExecOne(ctx, q, `INSERT INTO seen (fp) VALUES ($1)`, "abc")
	}); err != nil {
		t.Fatalf("commit tx: %v", err)
	}

	sentinel := errors.New("abort")
	err = RunInTx(ctx, s.PG, func(ctx context.Context, q RowQuerier) error {
		if err := ExecOne(ctx, q, `INSERT INTO seen (fp) VALUES ($1)`, "def"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("rollback tx err = %v", err)
	}

	n, err := Scalar[int64](ctx, s.PG, `SELECT count(*) FROM seen`)
	if err != nil || n != 1 {
		t.Fatalf("count = %d, %v (rolled back row must be absent)", n, err)
	}

	_, err = Exec(ctx, s.PG, `INSERT INTO seen (fp) VALUES ($1)`, "abc")
	if !perr.IsDuplicateKey(err) {
		t.Fatalf("expected duplicate key, got %v", err)
	}
}
