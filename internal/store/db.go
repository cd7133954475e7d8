package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the database access layer used by the SQL-backed stores.
// It is implemented by both *sql.DB and *sql.Tx, so a store built on a
// connection can be rebound to a transaction without changing its queries.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
