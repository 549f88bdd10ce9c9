package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvreeze/tqa-db/internal/domain"
)

// Querier is the query-execution capability shared by *pgxpool.Pool and
// pgx.Tx, so the same read code runs with or without a transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TxRunner runs a read closure, deciding whether it executes inside a
// read-only transaction. The runner owns the begin/commit/rollback bracket;
// any error returned by fn rolls back and propagates untouched.
type TxRunner interface {
	RunRead(ctx context.Context, fn func(ctx context.Context, q Querier) error) error
}

// ReadOnlyTxRunner brackets every read in a read-only pgx transaction on
// the pool. Serialization failures are not retried.
type ReadOnlyTxRunner struct {
	pool *pgxpool.Pool
}

func NewReadOnlyTxRunner(pool *pgxpool.Pool) *ReadOnlyTxRunner {
	return &ReadOnlyTxRunner{pool: pool}
}

func (r *ReadOnlyTxRunner) RunRead(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return &domain.StoreAccessError{Op: "begin read-only transaction", Err: err}
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &domain.StoreAccessError{Op: "commit read-only transaction", Err: err}
	}
	return nil
}

// DirectRunner executes reads straight against the pool, without a
// transaction bracket. Each statement still runs on its own pooled
// connection; use ReadOnlyTxRunner when a consistent snapshot across the
// whole read is required.
type DirectRunner struct {
	pool *pgxpool.Pool
}

func NewDirectRunner(pool *pgxpool.Pool) *DirectRunner {
	return &DirectRunner{pool: pool}
}

func (r *DirectRunner) RunRead(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	return fn(ctx, r.pool)
}
