package supaq

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/syssam/supaq/dialect/sql"
)

// Standard sentinel errors for common operations.
var (
	// ErrInvalidArgument is the sentinel all builder sanitization and
	// validation failures match (bad identifier, disallowed operator, etc.).
	// It is the same sentinel the dialect/sql builders return against.
	ErrInvalidArgument = sql.ErrInvalidArgument

	// ErrTxStarted is returned when attempting to start a new transaction
	// within an existing transaction.
	ErrTxStarted = errors.New("supaq: cannot start a transaction within a transaction")

	// ErrNoActiveTx is returned when commit or rollback is called without
	// an active transaction.
	ErrNoActiveTx = errors.New("supaq: no active transaction")

	// ErrNoConnection is returned when an operation requires an established
	// connection and the client is closed.
	ErrNoConnection = errors.New("supaq: no established connection")
)

// ValidationError reports a sanitization or validation failure at the builder
// call that introduced the bad input. It never reaches the database.
type ValidationError = sql.ValidationError

// IsInvalidArgument returns true if the error is a validation failure.
func IsInvalidArgument(err error) bool {
	return sql.IsInvalidArgument(err)
}

// ConnectionError represents a failure to establish or verify the underlying
// database connection.
type ConnectionError struct {
	addr string
	wrap error
}

// Error returns the error string.
func (e *ConnectionError) Error() string {
	if e.addr != "" {
		return fmt.Sprintf("supaq: connection to %s failed: %v", e.addr, e.wrap)
	}
	return fmt.Sprintf("supaq: connection failed: %v", e.wrap)
}

// Unwrap returns the underlying driver error.
func (e *ConnectionError) Unwrap() error {
	return e.wrap
}

// NewConnectionError returns a new ConnectionError wrapping the driver error.
func NewConnectionError(addr string, err error) *ConnectionError {
	return &ConnectionError{addr: addr, wrap: err}
}

// IsConnectionFailed returns true if the error is a ConnectionError.
func IsConnectionFailed(err error) bool {
	if err == nil {
		return false
	}
	var e *ConnectionError
	return errors.As(err, &e)
}

// QueryError wraps a lower-level driver execution error with the offending
// SQL text.
type QueryError struct {
	query string
	wrap  error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	return fmt.Sprintf("supaq: query failed: %v (sql: %s)", e.wrap, e.query)
}

// Unwrap returns the underlying driver error.
func (e *QueryError) Unwrap() error {
	return e.wrap
}

// Query returns the SQL text that failed.
func (e *QueryError) Query() string {
	return e.query
}

// NewQueryError returns a new QueryError for the given statement.
func NewQueryError(query string, err error) *QueryError {
	return &QueryError{query: query, wrap: err}
}

// IsQueryFailed returns true if the error is a QueryError.
func IsQueryFailed(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// TxError wraps a failure reported by the connection while beginning,
// committing or rolling back a transaction.
type TxError struct {
	op   string // "begin", "commit", "rollback"
	wrap error
}

// Error returns the error string.
func (e *TxError) Error() string {
	return fmt.Sprintf("supaq: transaction %s failed: %v", e.op, e.wrap)
}

// Unwrap returns the underlying driver error.
func (e *TxError) Unwrap() error {
	return e.wrap
}

// Op returns the transaction operation that failed.
func (e *TxError) Op() string {
	return e.op
}

// NewTxError returns a new TxError for the given operation.
func NewTxError(op string, err error) *TxError {
	return &TxError{op: op, wrap: err}
}

// IsTransactionFailed returns true if the error is a TxError.
func IsTransactionFailed(err error) bool {
	if err == nil {
		return false
	}
	var e *TxError
	return errors.As(err, &e)
}

// ProcedureError wraps a stored-procedure invocation error with the
// procedure name.
type ProcedureError struct {
	name string
	wrap error
}

// Error returns the error string.
func (e *ProcedureError) Error() string {
	return fmt.Sprintf("supaq: procedure %s failed: %v", e.name, e.wrap)
}

// Unwrap returns the underlying driver error.
func (e *ProcedureError) Unwrap() error {
	return e.wrap
}

// Name returns the procedure name.
func (e *ProcedureError) Name() string {
	return e.name
}

// NewProcedureError returns a new ProcedureError for the given procedure.
func NewProcedureError(name string, err error) *ProcedureError {
	return &ProcedureError{name: name, wrap: err}
}

// IsProcedureFailed returns true if the error is a ProcedureError.
func IsProcedureFailed(err error) bool {
	if err == nil {
		return false
	}
	var e *ProcedureError
	return errors.As(err, &e)
}

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e *ConstraintError) Error() string {
	return "supaq: constraint failed: " + e.msg
}

// Unwrap returns the underlying error.
func (e *ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return &ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error resulted from a database
// constraint violation. Postgres reports these as SQLSTATE class 23.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConstraintError
	if errors.As(err, &e) {
		return true
	}
	var pqe *pq.Error
	return errors.As(err, &pqe) && pqe.Code.Class() == "23"
}

// wrapConstraint converts Postgres integrity violations (SQLSTATE class 23)
// into a ConstraintError, leaving other errors untouched.
func wrapConstraint(err error) error {
	var pqe *pq.Error
	if errors.As(err, &pqe) && pqe.Code.Class() == "23" {
		return &ConstraintError{msg: pqe.Message, wrap: err}
	}
	return err
}
