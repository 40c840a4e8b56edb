package store

import (
	"context"
	"errors"
	"testing"

	"hamfinder/internal/platform/store/ch"
)

type fakeCHRows struct {
	*fakeRows
	closed bool
}

func (r *fakeCHRows) Close() error { r.closed = true; return nil }

type fakeCHClient struct {
	rows     *fakeCHRows
	qErr     error
	inserted map[string][][]any
	execs    []string
	pingErr  error
}

func (f *fakeCHClient) Insert(_ context.Context, table string, rows [][]any) error {
	if f.inserted == nil {
		f.inserted = map[string][][]any{}
	}
	f.inserted[table] = append(f.inserted[table], rows...)
	return nil
}
func (f *fakeCHClient) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	return nil
}
func (f *fakeCHClient) Query(context.Context, string, ...any) (ch.Rows, error) {
	if f.qErr != nil {
		return nil, f.qErr
	}
	return f.rows, nil
}
func (f *fakeCHClient) Ping(context.Context) error { return f.pingErr }
func (f *fakeCHClient) Close() error               { return nil }

func TestCHAdapter_Forwards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fr := &fakeCHRows{fakeRows: newFakeRows([]string{"n"}, []any{int64(3)})}
	fc := &fakeCHClient{rows: fr}
	a := newCHAdapter(fc)

	if err := a.Exec(ctx, "CREATE TABLE IF NOT EXISTS ham_matches"); err != nil || len(fc.execs) != 1 {
		t.Fatalf("Exec not forwarded: %v", err)
	}
	if err := a.Insert(ctx, "ham_matches", [][]any{{"K1ABC"}}); err != nil || len(fc.inserted["ham_matches"]) != 1 {
		t.Fatalf("Insert not forwarded: %v", err)
	}

	rs, err := a.Query(ctx, "SELECT count()")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !rs.Next() {
		t.Fatalf("expected a row")
	}
	var n int64
	if err := rs.Scan(&n); err != nil || n != 3 {
		t.Fatalf("Scan = %d, %v", n, err)
	}
	if cols := rs.Columns(); len(cols) != 1 || cols[0] != "n" {
		t.Fatalf("Columns = %v", cols)
	}
	rs.Close()
	if !fr.closed {
		t.Fatalf("Close not forwarded")
	}
}

func TestCHAdapter_Errors(t *testing.T) {
	t.Parallel()
	a := newCHAdapter(&fakeCHClient{qErr: errors.New("syntax"), pingErr: errors.New("down")})
	if _, err := a.Query(context.Background(), "SELEC"); err == nil {
		t.Fatalf("expected query error")
	}
	if err := a.(Pinger).Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error")
	}
	var nilAdapter *clickhouseAdapter
	if nilAdapter.Ping(context.Background()) == nil {
		t.Fatalf("nil adapter ping should fail")
	}
}
