package dialect

import (
	"context"
)

// Postgres is the only dialect supaq speaks. The connection façade targets a
// PostgreSQL-compatible backend (Supabase); the constant exists so the driver
// layer stays explicit about what it was opened with.
const Postgres = "postgres"

// ExecQuerier wraps the basic Exec and Query methods.
//
// Statements carry named placeholders (":name") and a parameter map; the
// driver layer converts them to the backend's ordinal form. The args argument
// is expected to be a map[string]any, and the v argument an optional pointer
// for the result (*sql.Result for Exec, *sql.Rows wrapper for Query).
type ExecQuerier interface {
	// Exec executes a statement that doesn't return rows. For example, INSERT
	// and UPDATE.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows, typically a SELECT.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all database operations.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	// The provided context is used until the transaction is committed or rolled back.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps transactional behavior.
type Tx interface {
	ExecQuerier
	// Commit commits the transaction.
	Commit() error
	// Rollback discards the transaction.
	Rollback() error
}

type nopTx struct {
	Driver
}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

// NopTx returns a Tx with a no-op Commit / Rollback operations.
func NopTx(d Driver) Tx {
	return nopTx{d}
}
