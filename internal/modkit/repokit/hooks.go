package repokit

import (
	"context"
	"fmt"
)

// BeginHook runs first inside a transaction, on the tx bound Queryer
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks returns a TxRunner whose Tx runs hooks in order before fn.
// Plain Exec and Query calls go straight to inner
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	if len(hooks) == 0 {
		return inner
	}
	return hooked{TxRunner: inner, hooks: hooks}
}

type hooked struct {
	TxRunner
	hooks []BeginHook
}

func (h hooked) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for i, hook := range h.hooks {
			if err := hook(ctx, q); err != nil {
				return fmt.Errorf("begin hook %d: %w", i, err)
			}
		}
		return fn(q)
	})
}

// AdvisoryXactLock holds pg_advisory_xact_lock(hashtext(key)) until the tx ends
func AdvisoryXactLock(key string) BeginHook {
	return func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key)
		return err
	}
}
