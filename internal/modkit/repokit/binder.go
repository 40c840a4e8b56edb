// Package repokit binds SQL repos to a Queryer and runs them inside hooked transactions
package repokit

import (
	"context"

	"hamfinder/internal/platform/store"
)

type (
	// Queryer is the read and write surface a bound repo runs against
	Queryer = store.RowQuerier
	// TxRunner opens transactions; the PG store and hooked runners implement it
	TxRunner = store.TxRunner

	Rows       = store.Rows
	Row        = store.Row
	CommandTag = store.CommandTag
)

// Binder binds a domain repo to a Queryer, either the pool or an open tx
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain constructor to Binder
type BindFunc[T any] func(Queryer) T

// Bind implements Binder
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind panics on a nil Queryer, then binds
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}

// WithTx runs fn inside one transaction on tx and binds nothing itself
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
