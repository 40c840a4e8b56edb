package pg

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"hamfinder/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestOpen_ParseError(t *testing.T) {
	t.Parallel()
	if _, err := Open(context.Background(), Config{URL: "://bad"}, nil, nil); err == nil {
		t.Fatalf("expected parse error, got nil")
	}
}

func TestOpen_NewPoolError(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("boom")
	})

	_, err := Open(context.Background(), Config{URL: "postgres://u:p@h:5432/db?sslmode=disable"}, nil, nil)
	if err == nil {
		t.Fatalf("expected newPool error, got nil")
	}
}

func TestOpen_AppliesConfig(t *testing.T) {
	testkit.Serial(t)

	var seen *pgxpool.Config
	testkit.Swap(t, &newPool, func(_ context.Context, pc *pgxpool.Config) (*pgxpool.Pool, error) {
		seen = pc
		return &pgxpool.Pool{}, nil
	})

	var mutCalled atomic.Bool
	cfg := Config{URL: "postgres://u:p@h:5432/db?sslmode=disable", AppName: "hamfinder-ledger", MaxConns: 4, SlowMs: 50}
	p, err := Open(context.Background(), cfg, nil, func(*pgxpool.Config) { mutCalled.Store(true) })
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !mutCalled.Load() {
		t.Fatalf("pool mutator not invoked")
	}
	if seen.MaxConns != 4 {
		t.Fatalf("MaxConns = %d, want 4", seen.MaxConns)
	}
	if got := seen.ConnConfig.RuntimeParams["application_name"]; got != "hamfinder-ledger" {
		t.Fatalf("application_name = %q", got)
	}
	if p.SlowMs != 50 || p.Pool == nil {
		t.Fatalf("unexpected client: %+v", p)
	}
}

func TestClose_NilSafe(t *testing.T) {
	t.Parallel()
	var p *PG
	p.Close()
	(&PG{}).Close()
}
