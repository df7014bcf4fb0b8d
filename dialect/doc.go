// Package dialect provides the connection abstraction consumed by supaq.
//
// This package defines the narrow interfaces the façade executes through,
// keeping query construction decoupled from the concrete database/sql
// plumbing in dialect/sql.
//
// # Driver Interface
//
// The package defines the Driver interface for database operations:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// Statements carry named placeholders (":name"); args is the placeholder to
// value map produced by the query builder. The driver layer converts named
// placeholders to Postgres ordinals before execution.
//
// # Transaction Interface
//
// The Tx interface extends ExecQuerier with transaction methods:
//
//	type Tx interface {
//	    ExecQuerier
//	    Commit() error
//	    Rollback() error
//	}
//
// # Usage
//
// Opening a database connection:
//
//	import (
//	    "github.com/syssam/supaq/dialect"
//	    "github.com/syssam/supaq/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// # Sub-packages
//
//   - dialect/sql: query builders, identifier sanitization, named parameter
//     binding, and the database/sql driver implementation
package dialect
