package store

import (
	"context"
	"errors"
)

// fakeRows iterates over in-memory data; Scan copies by position into *string, *int64, *bool or *any
type fakeRows struct {
	cols []string
	data [][]any
	idx  int
	err  error
}

func newFakeRows(cols []string, data ...[]any) *fakeRows {
	return &fakeRows{cols: cols, data: data, idx: -1}
}

func (r *fakeRows) Next() bool        { r.idx++; return r.idx < len(r.data) }
func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return r.cols }
func (r *fakeRows) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.data) {
		return errors.New("scan out of range")
	}
	return assignAll(r.data[r.idx], dest)
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assignAll(r.vals, dest)
}

func assignAll(src []any, dest []any) error {
	if len(src) != len(dest) {
		return errors.New("dest len mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = src[i].(string)
		case *int64:
			*p = src[i].(int64)
		case *bool:
			*p = src[i].(bool)
		case *any:
			*p = src[i]
		default:
			return errors.New("unsupported dest")
		}
	}
	return nil
}

type fakeTag struct{ n int64 }

func (t fakeTag) String() string      { return "INSERT 0 1" }
func (t fakeTag) RowsAffected() int64 { return t.n }

// fakeQuerier records SQL and returns canned results
type fakeQuerier struct {
	execN   int64
	execErr error
	rows    *fakeRows
	qErr    error
	row     fakeRow
	sqls    []string
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	f.sqls = append(f.sqls, sql)
	return fakeTag{n: f.execN}, f.execErr
}

func (f *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (Rows, error) {
	f.sqls = append(f.sqls, sql)
	if f.qErr != nil {
		return nil, f.qErr
	}
	return f.rows, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, _ ...any) Row {
	f.sqls = append(f.sqls, sql)
	return f.row
}

func (f *fakeQuerier) Tx(ctx context.Context, fn func(q RowQuerier) error) error { return fn(f) }

type pingCloser struct {
	pingErr  error
	closeErr error
	closed   bool
}

func (p *pingCloser) Ping(context.Context) error { return p.pingErr }
func (p *pingCloser) Close() error               { p.closed = true; return p.closeErr }

// pgSeam is a TxRunner that also pings and closes
type pgSeam struct {
	*fakeQuerier
	*pingCloser
}

// chSeam satisfies Clickhouse and Pinger
type chSeam struct {
	*pingCloser
	inserted [][]any
}

func (c *chSeam) Insert(_ context.Context, _ string, rows [][]any) error {
	c.inserted = append(c.inserted, rows...)
	return nil
}
func (c *chSeam) Exec(context.Context, string, ...any) error { return nil }
func (c *chSeam) Query(context.Context, string, ...any) (Rows, error) {
	return newFakeRows(nil), nil
}
