// Package supaq provides a parameterized SQL statement builder and a
// connection façade for Postgres-backed Supabase projects.
//
// Statements are composed with the builders in dialect/sql, which emit SQL
// text with named :placeholders and a matching parameter map. The Client in
// this package executes that output over a single logical connection,
// converting named placeholders to Postgres ordinals at the driver layer,
// timing and logging every call, and mapping failures onto a small error
// taxonomy (ConnectionError, QueryError, TxError, ProcedureError,
// ConstraintError).
//
// Identifiers never come from user input unvalidated: every table, column,
// operator, join condition and sort direction passes an allow-list before it
// is interpolated, and all values travel as bind parameters.
package supaq
