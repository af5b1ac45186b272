// Package repository contains the database access layer.
//
// Queries are written against PostgreSQL through database/sql with the pgx
// stdlib driver. The repository returns raw database errors (including
// sql.ErrNoRows); the service layer translates them into domain errors.
package repository

import (
	"context"
	"database/sql"
)

// Queries provides access to all database operations.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance backed by the given database handle.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// DB exposes the underlying handle for health checks.
func (q *Queries) DB() *sql.DB {
	return q.db
}

// withSerializableTx runs fn inside a serializable transaction, committing
// on success and rolling back on error. Quota read-check-write sequences go
// through this so concurrent submissions cannot interleave and under-count.
func (q *Queries) withSerializableTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := q.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
