package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy it, so a repository bound to a DBTX works
// inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is run by Handle.WithTx with a transactional DBTX.
type TxFunc func(ctx context.Context, tx DBTX) error

// Handle is the storage handle passed to services.
type Handle interface {
	// DB returns a non-transactional handle for reads.
	DB() DBTX

	// WithTx runs fn in a write transaction. The transaction commits if fn
	// returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn TxFunc) error
}

func withTx(ctx context.Context, db *sql.DB, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			_ = tx.Rollback()

			return
		}

		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
