// Package repository reads and writes the Sunday4K tables with pgx.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sunday4k/sunday4k/pkg/db"
)

var (
	ErrNotFound       = errors.New("repository: not found")
	ErrInvalidInput   = errors.New("repository: invalid input")
	ErrSystemVariable = errors.New("repository: system variables cannot be deleted")
)

// DBTX is implemented by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository groups all queries over one connection or transaction.
type Repository struct {
	db DBTX
}

// New returns a Repository using conn.
func New(conn DBTX) *Repository {
	return &Repository{db: conn}
}

// WithTx runs fn with a Repository bound to a new transaction. The transaction
// is also passed so callers can enqueue jobs atomically with their writes.
func WithTx(ctx context.Context, pool db.TxBeginner, fn func(tx pgx.Tx, repo *Repository) error) error {
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		return fn(tx, New(tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func collectOne[T any](rows pgx.Rows) (T, error) {
	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	return v, notFound(err)
}

func collectAll[T any](rows pgx.Rows) ([]T, error) {
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}
