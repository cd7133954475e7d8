// Package postgres implements the progress and question stores on
// PostgreSQL through database/sql and the pgx driver, and carries the
// embedded goose migrations that create their tables.
package postgres
