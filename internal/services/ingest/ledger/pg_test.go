package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/store"
	"hamfinder/internal/services/ingest/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

type tag int64

func (t tag) String() string      { return "INSERT" }
func (t tag) RowsAffected() int64 { return int64(t) }

type row struct {
	vals []any
	err  error
}

func (r row) Scan(dst ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dst {
		switch d := dst[i].(type) {
		case *bool:
			*d = r.vals[i].(bool)
		case *string:
			*d = r.vals[i].(string)
		}
	}
	return nil
}

type rows struct {
	data [][]any
	i    int
}

func (r *rows) Next() bool            { r.i++; return r.i <= len(r.data) }
func (r *rows) Scan(dst ...any) error { return row{vals: r.data[r.i-1]}.Scan(dst...) }
func (r *rows) Err() error            { return nil }
func (r *rows) Close()                {}
func (r *rows) Columns() []string     { return nil }

type fakeDB struct {
	sqls    []string
	args    [][]any
	exists  bool
	list    [][]any
	execErr map[string]error
	txs     int
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.sqls = append(f.sqls, sql)
	f.args = append(f.args, args)
	for k, err := range f.execErr {
		if strings.Contains(sql, k) {
			return nil, err
		}
	}
	return tag(1), nil
}

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) (store.Rows, error) {
	f.sqls = append(f.sqls, sql)
	return &rows{data: f.list}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, _ ...any) store.Row {
	f.sqls = append(f.sqls, sql)
	return row{vals: []any{f.exists}}
}

func (f *fakeDB) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	f.txs++
	return fn(f)
}

func TestOpenPG_EnsuresSchema(t *testing.T) {
	t.Parallel()
	db := &fakeDB{}
	if _, err := OpenPG(context.Background(), db); err != nil {
		t.Fatalf("OpenPG: %v", err)
	}
	if len(db.sqls) != 1 || !strings.Contains(db.sqls[0], "CREATE TABLE IF NOT EXISTS ingest_ledger") {
		t.Fatalf("schema not ensured: %v", db.sqls)
	}

	if _, err := OpenPG(context.Background(), nil); !perr.IsCode(err, perr.ErrorCodePersistence) {
		t.Fatalf("nil db err = %v", err)
	}
	bad := &fakeDB{execErr: map[string]error{"CREATE TABLE": errors.New("permission denied")}}
	if _, err := OpenPG(context.Background(), bad); !perr.IsCode(err, perr.ErrorCodePersistence) {
		t.Fatalf("schema failure err = %v", err)
	}
}

func TestPG_RecordTakesLockThenInserts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := &fakeDB{}
	l, _ := OpenPG(ctx, db)
	db.sqls, db.args = nil, nil

	err := l.Record(ctx, domain.LedgerEntry{Fingerprint: "abc", RunDate: "2024-05-06", SourceName: "mon"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if db.txs != 1 || len(db.sqls) != 2 {
		t.Fatalf("want one tx with lock and insert, got %d tx %v", db.txs, db.sqls)
	}
	if !strings.Contains(db.sqls[0], "pg_advisory_xact_lock") || db.args[0][0] != lockKey {
		t.Fatalf("first statement should lock: %v %v", db.sqls[0], db.args[0])
	}
	if !strings.Contains(db.sqls[1], "INSERT INTO ingest_ledger") {
		t.Fatalf("second statement should insert: %v", db.sqls[1])
	}
	day, ok := db.args[1][1].(time.Time)
	if !ok || day.Format("2006-01-02") != "2024-05-06" {
		t.Fatalf("run date arg = %#v", db.args[1][1])
	}
}

func TestPG_RecordErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	l, _ := OpenPG(ctx, &fakeDB{})
	if err := l.Record(ctx, domain.LedgerEntry{Fingerprint: "abc", RunDate: "06/05/2024"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("bad date err = %v", err)
	}
	if err := l.Record(ctx, domain.LedgerEntry{RunDate: "2024-05-06"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty fingerprint err = %v", err)
	}

	dup := &fakeDB{execErr: map[string]error{"INSERT": &pgconn.PgError{Code: "23505"}}}
	l, _ = OpenPG(ctx, dup)
	err := l.Record(ctx, domain.LedgerEntry{Fingerprint: "abc", RunDate: "2024-05-06", SourceName: "mon"})
	if !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("unique violation err = %v", err)
	}

	down := &fakeDB{execErr: map[string]error{"INSERT": errors.New("conn reset")}}
	l, _ = OpenPG(ctx, down)
	err = l.Record(ctx, domain.LedgerEntry{Fingerprint: "abc", RunDate: "2024-05-06", SourceName: "mon"})
	if !perr.IsCode(err, perr.ErrorCodePersistence) {
		t.Fatalf("transport err = %v", err)
	}
}

func TestPG_HasSeenAndEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := &fakeDB{exists: true, list: [][]any{
		{"abc", "2024-05-06", "mon"},
		{"def", "2024-05-07", "tue"},
	}}
	l, _ := OpenPG(ctx, db)

	seen, err := l.HasSeen(ctx, "abc")
	if err != nil || !seen {
		t.Fatalf("HasSeen = %v, %v", seen, err)
	}
	es, err := l.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	want := []domain.LedgerEntry{
		{Fingerprint: "abc", RunDate: "2024-05-06", SourceName: "mon"},
		{Fingerprint: "def", RunDate: "2024-05-07", SourceName: "tue"},
	}
	if len(es) != 2 || es[0] != want[0] || es[1] != want[1] {
		t.Fatalf("Entries = %+v", es)
	}
}

func TestPG_RecordSerializationFailureIsSingleAttempt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := &fakeDB{execErr: map[string]error{"INSERT": &pgconn.PgError{Code: "40001"}}}
	l, _ := OpenPG(ctx, db)

	err := l.Record(ctx, domain.LedgerEntry{Fingerprint: "abc", RunDate: "2024-05-06", SourceName: "mon"})
	if !perr.IsCode(err, perr.ErrorCodePersistence) {
		t.Fatalf("serialization failure err = %v", err)
	}
	if db.txs != 1 {
		t.Fatalf("txs = %d, want exactly one attempt", db.txs)
	}
}
