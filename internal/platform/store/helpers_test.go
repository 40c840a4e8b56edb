package store

import (
	"context"
	"errors"
	"testing"

	perr "hamfinder/internal/platform/errors"
)

type entry struct {
	Fingerprint string
	RunDate     string
}

func scanEntry(r Row) (entry, error) {
	var e entry
	err := r.Scan(&e.Fingerprint, &e.RunDate)
	return e, err
}

func TestExecOne(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	if err := ExecOne(ctx, &fakeQuerier{execN: 1}, "INSERT"); err != nil {
		t.Fatalf("ExecOne(1 row) = %v", err)
	}
	err := ExecOne(ctx, &fakeQuerier{execN: 0}, "INSERT")
	if !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("ExecOne(0 rows) code = %v", perr.CodeOf(err))
	}
	boom := errors.New("boom")
	if err := ExecOne(ctx, &fakeQuerier{execErr: boom}, "INSERT"); !errors.Is(err, boom) {
		t.Fatalf("ExecOne should surface exec error, got %v", err)
	}
	if _, err := Exec(ctx, &fakeQuerier{execN: 3}, "DELETE"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
}

func TestScalar(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	got, err := Scalar[bool](ctx, &fakeQuerier{row: fakeRow{vals: []any{true}}}, "SELECT EXISTS(...)")
	if err != nil || !got {
		t.Fatalf("Scalar = %v, %v", got, err)
	}
	_, err = Scalar[bool](ctx, &fakeQuerier{row: fakeRow{err: errors.New("no rows")}}, "SELECT")
	if err == nil {
		t.Fatalf("expected scan error")
	}
}

func TestOne(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cols := []string{"fingerprint", "run_date"}

	q := &fakeQuerier{rows: newFakeRows(cols, []any{"abc", "2024-05-06"})}
	e, err := One(ctx, q, scanEntry, "SELECT")
	if err != nil || e.Fingerprint != "abc" {
		t.Fatalf("One = %+v, %v", e, err)
	}

	_, err = One(ctx, &fakeQuerier{rows: newFakeRows(cols)}, scanEntry, "SELECT")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("One(empty) code = %v", perr.CodeOf(err))
	}

	two := newFakeRows(cols, []any{"a", "d"}, []any{"b", "d"})
	if _, err := One(ctx, &fakeQuerier{rows: two}, scanEntry, "SELECT"); err == nil {
		t.Fatalf("One should reject more than one row")
	}

	if _, err := One(ctx, &fakeQuerier{qErr: errors.New("down")}, scanEntry, "SELECT"); err == nil {
		t.Fatalf("One should surface query error")
	}
}

func TestMany(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cols := []string{"fingerprint", "run_date"}

	q := &fakeQuerier{rows: newFakeRows(cols, []any{"a", "2024-05-06"}, []any{"b", "2024-05-07"})}
	got, err := Many(ctx, q, scanEntry, "SELECT")
	if err != nil || len(got) != 2 || got[1].RunDate != "2024-05-07" {
		t.Fatalf("Many = %+v, %v", got, err)
	}

	bad := newFakeRows(cols, []any{"a", "d"})
	bad.err = errors.New("iter")
	if _, err := Many(ctx, &fakeQuerier{rows: bad}, scanEntry, "SELECT"); err == nil {
		t.Fatalf("Many should surface rows.Err")
	}
}

func TestRunInTx(t *testing.T) {
	t.Parallel()
	q := &fakeQuerier{execN: 1}
	type k struct{}
	ctx := context.WithValue(context.Background(), k{}, "v")
	err := RunInTx(ctx, q, func(c context.Context, rq RowQuerier) error {
		if c.Value(k{}) != "v" {
			t.Fatalf("ctx not passed through")
		}
		return ExecOne(c, rq, "INSERT")
	})
	if err != nil || len(q.sqls) != 1 {
		t.Fatalf("RunInTx = %v, sqls=%v", err, q.sqls)
	}
}
