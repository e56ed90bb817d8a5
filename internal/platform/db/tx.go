package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

// TxKey carries an open transaction through a context so that repositories
// can join it transparently via ConnFromContext.
const TxKey contextKey = "db_tx"

// ConnFromContext returns the transaction bound to ctx, or nil if the caller
// is not running inside WithTx. Repositories fall back to their pool when
// this returns nil.
func ConnFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(TxKey).(pgx.Tx)
	return tx
}

// WithTx runs fn inside a single transaction. The transaction is stored in
// the context passed to fn, so any repository call made with that context
// joins it. A non-nil error from fn rolls the transaction back.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, TxKey, tx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
