package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by pools and transactions. Repositories
// accept it so the same queries run standalone or inside a caller's
// transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRunner runs a function inside one unit of work. Services depend on it
// instead of the pool so tests can supply a pass-through runner.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(DBTX) error) error
}

// PoolRunner is the production TxRunner backed by a pgx pool.
type PoolRunner struct {
	Pool *pgxpool.Pool
}

// RunTx executes fn inside a ReadCommitted transaction.
func (p PoolRunner) RunTx(ctx context.Context, fn func(DBTX) error) error {
	return WithTx(ctx, p.Pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

// WithTx executes fn within a ReadCommitted transaction, rolling back on
// any error. The role flows lock the user row and then count or read
// related rows; those reads must see what the previous lock holder
// committed, which a snapshot isolation level would hide.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}
