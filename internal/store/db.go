package store

import (
	"context"

	"bookcatalog/internal/usecase"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the pgx surface shared by *pgxpool.Pool and pgx.Tx, so every store
// works the same against the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRunner wraps each catalog operation in one transaction, so a failure
// halfway through a save or modify rolls back every prior write of that
// operation.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (t *TxRunner) RunInTx(ctx context.Context, fn func(r usecase.Repositories) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	repos := usecase.Repositories{
		Books:          NewBookPG(tx),
		Categories:     NewCategoryPG(tx),
		BookCategories: NewBookCategoryPG(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
