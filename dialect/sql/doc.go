// Package sql provides the query construction core and the database/sql
// driver implementation used by supaq.
//
// # Query Builders
//
// Builder accumulates clauses for a single statement and renders SQL text
// with named placeholders plus a parallel parameter map:
//
//	b, err := sql.NewBuilder("users")
//	if err != nil {
//	    return err
//	}
//	if err := b.Where("id", "=", 5); err != nil {
//	    return err
//	}
//	query := b.BuildSelect() // SELECT * FROM users WHERE id = :id_0
//	params := b.Params()     // map[string]any{"id_0": 5}
//
// SupabaseBuilder extends Builder with Postgres-specific predicates
// (full-text search, earthdistance radius, JSON containment, ILIKE, array
// overlap) and RETURNING variants of the mutating statements.
//
// All identifiers pass through Ident, which rejects anything outside
// [A-Za-z0-9_.] outright. Operators, join types and order directions are
// matched against fixed allow-lists. Validation failures surface as
// *ValidationError at the offending call and never reach the database.
//
// # Named Parameter Binding
//
// BindNamed converts named placeholders to Postgres ordinals at execution
// time and enforces that placeholders and bound parameters correspond
// exactly.
//
// # Driver
//
// Driver, Conn and Tx adapt database/sql to the dialect.Driver interface.
// StatsDriver layers execution statistics and slow-query detection on top.
//
// # Session Variables
//
// WithVar attaches session variables to a context; they are SET before each
// statement executed with it and RESET when the pooled connection is
// released. Supabase row-level-security policies read such variables via
// current_setting().
package sql
