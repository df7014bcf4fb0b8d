package sql

import (
	"strconv"
	"strings"
)

// allowedOperators is the fixed operator allow-list for WHERE predicates.
// Keys are in normalized (uppercase, single-spaced) form.
var allowedOperators = map[string]bool{
	"=":           true,
	"!=":          true,
	"<":           true,
	">":           true,
	"<=":          true,
	">=":          true,
	"LIKE":        true,
	"ILIKE":       true,
	"IN":          true,
	"NOT IN":      true,
	"IS NULL":     true,
	"IS NOT NULL": true,
}

// allowedJoinTypes is the fixed join-type allow-list.
var allowedJoinTypes = map[string]bool{
	"INNER":      true,
	"LEFT":       true,
	"RIGHT":      true,
	"FULL OUTER": true,
}

// Assign is a single column/value pair for INSERT and UPDATE statements.
// Assignments are ordered; the rendered column list follows slice order.
type Assign struct {
	Column string
	Value  any
}

// Builder accumulates clause state for a single statement against one table
// and renders it into SQL text with named placeholders plus a parallel
// parameter map. A Builder is not safe for concurrent use; callers needing
// concurrency must use one Builder per goroutine.
//
// Every clause method validates its input synchronously and returns a
// ValidationError without mutating builder state when the input is bad.
// State is not reset between terminal Build* calls; use Reset to start a new
// independent statement on the same table.
type Builder struct {
	table   string
	columns []string
	preds   []string
	joins   []string
	orders  []string
	groups  []string
	limit   *int
	offset  *int
	params  map[string]any
}

// NewBuilder returns a Builder bound to the given table. The table name is
// sanitized once here and is immutable for the builder's lifetime.
func NewBuilder(table string) (*Builder, error) {
	t, err := Ident(table)
	if err != nil {
		return nil, err
	}
	return &Builder{table: t, params: make(map[string]any)}, nil
}

// Table returns the sanitized table name the builder is bound to.
func (b *Builder) Table() string {
	return b.table
}

// Select replaces the select list. Each column other than the wildcard "*"
// is sanitized. Calling Select twice overwrites the prior selection, it does
// not append.
func (b *Builder) Select(columns ...string) error {
	cols := make([]string, 0, len(columns))
	for _, c := range columns {
		if c == "*" {
			cols = append(cols, c)
			continue
		}
		ident, err := Ident(c)
		if err != nil {
			return err
		}
		cols = append(cols, ident)
	}
	b.columns = cols
	return nil
}

// normalizeOperator uppercases the operator and collapses internal
// whitespace before checking it against the allow-list.
func normalizeOperator(op string) (string, error) {
	normalized := strings.Join(strings.Fields(strings.ToUpper(op)), " ")
	if !allowedOperators[normalized] {
		return "", NewValidationError("operator", op, "operator not in allowed list")
	}
	return normalized, nil
}

// Where appends an AND-joined predicate comparing column against value.
//
// The operator is matched case-insensitively against the allow-list and
// normalized to uppercase. "IS NULL" and "IS NOT NULL" take no value and
// bind no parameter. "IN" and "NOT IN" expect value to be a []any and expand
// to one placeholder per element. All other operators bind value under a
// placeholder named "<column>_<n>" where n is the current parameter count,
// which keeps placeholder names unique within the statement.
func (b *Builder) Where(column, operator string, value any) error {
	col, err := Ident(column)
	if err != nil {
		return err
	}
	op, err := normalizeOperator(operator)
	if err != nil {
		return err
	}
	switch op {
	case "IS NULL", "IS NOT NULL":
		b.preds = append(b.preds, col+" "+op)
		return nil
	case "IN", "NOT IN":
		values, ok := value.([]any)
		if !ok {
			return NewValidationError("operator", operator, "IN and NOT IN require a []any value")
		}
		return b.whereList(col, op, values)
	}
	ph := placeholderName(col) + "_" + strconv.Itoa(len(b.params))
	b.preds = append(b.preds, col+" "+op+" :"+ph)
	b.params[ph] = value
	return nil
}

// WhereIn appends a "column IN (...)" predicate with one uniquely named
// placeholder per value.
func (b *Builder) WhereIn(column string, values []any) error {
	col, err := Ident(column)
	if err != nil {
		return err
	}
	return b.whereList(col, "IN", values)
}

// whereList renders an IN / NOT IN list predicate. The column must already
// be sanitized.
func (b *Builder) whereList(col, op string, values []any) error {
	if len(values) == 0 {
		return NewValidationError("values", "", op+" requires at least one value")
	}
	phs := make([]string, len(values))
	for i, v := range values {
		ph := placeholderName(col) + "_" + strconv.Itoa(len(b.params))
		phs[i] = ":" + ph
		b.params[ph] = v
	}
	b.preds = append(b.preds, col+" "+op+" ("+strings.Join(phs, ", ")+")")
	return nil
}

// Join appends a join clause. The target table is sanitized, the join type is
// matched against {INNER, LEFT, RIGHT, FULL OUTER}, and the condition must
// structurally look like "identifier operator identifier".
func (b *Builder) Join(table, condition, joinType string) error {
	t, err := Ident(table)
	if err != nil {
		return err
	}
	jt := strings.Join(strings.Fields(strings.ToUpper(joinType)), " ")
	if !allowedJoinTypes[jt] {
		return NewValidationError("join type", joinType, "join type not in allowed list")
	}
	cond, err := joinCondition(condition)
	if err != nil {
		return err
	}
	b.joins = append(b.joins, jt+" JOIN "+t+" ON "+cond)
	return nil
}

// OrderBy appends an ordering clause. The direction must be ASC or DESC
// (case-insensitive).
func (b *Builder) OrderBy(column, direction string) error {
	col, err := Ident(column)
	if err != nil {
		return err
	}
	dir := strings.ToUpper(strings.TrimSpace(direction))
	if dir != "ASC" && dir != "DESC" {
		return NewValidationError("direction", direction, "direction must be ASC or DESC")
	}
	b.orders = append(b.orders, col+" "+dir)
	return nil
}

// GroupBy appends a grouping column.
func (b *Builder) GroupBy(column string) error {
	col, err := Ident(column)
	if err != nil {
		return err
	}
	b.groups = append(b.groups, col)
	return nil
}

// Limit sets the LIMIT value. LIMIT and OFFSET are rendered as integer
// literals rather than parameters; they are integer-typed already, so no
// injection surface remains.
func (b *Builder) Limit(n int) error {
	if n < 0 {
		return NewValidationError("limit", strconv.Itoa(n), "limit must be non-negative")
	}
	b.limit = &n
	return nil
}

// Offset sets the OFFSET value.
func (b *Builder) Offset(n int) error {
	if n < 0 {
		return NewValidationError("offset", strconv.Itoa(n), "offset must be non-negative")
	}
	b.offset = &n
	return nil
}

// BuildSelect renders the accumulated state as a SELECT statement. Clause
// order is fixed: SELECT, FROM, JOIN, WHERE, GROUP BY, ORDER BY, LIMIT,
// OFFSET, with empty clauses omitted. WHERE fragments are joined with
// " AND " only.
func (b *Builder) BuildSelect() string {
	cols := "*"
	if len(b.columns) > 0 {
		cols = strings.Join(b.columns, ", ")
	}
	parts := []string{"SELECT " + cols + " FROM " + b.table}
	parts = append(parts, b.joins...)
	parts = b.appendWhere(parts)
	if len(b.groups) > 0 {
		parts = append(parts, "GROUP BY "+strings.Join(b.groups, ", "))
	}
	if len(b.orders) > 0 {
		parts = append(parts, "ORDER BY "+strings.Join(b.orders, ", "))
	}
	if b.limit != nil {
		parts = append(parts, "LIMIT "+strconv.Itoa(*b.limit))
	}
	if b.offset != nil {
		parts = append(parts, "OFFSET "+strconv.Itoa(*b.offset))
	}
	return strings.Join(parts, " ")
}

// BuildInsert renders an INSERT statement from the assignments, in slice
// order. Each assignment binds its value under a placeholder named after the
// column alone (no count suffix). Rendering the same column again on an
// unreset builder silently overwrites the parameter-map entry; call Reset
// between independent statements.
func (b *Builder) BuildInsert(assigns []Assign) (string, error) {
	cols, phs, err := b.bindAssigns(assigns)
	if err != nil {
		return "", err
	}
	return "INSERT INTO " + b.table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(phs, ", ") + ")", nil
}

// BuildUpdate renders an UPDATE statement from the assignments, appending
// any previously accumulated WHERE clause.
func (b *Builder) BuildUpdate(assigns []Assign) (string, error) {
	cols, phs, err := b.bindAssigns(assigns)
	if err != nil {
		return "", err
	}
	sets := make([]string, len(cols))
	for i := range cols {
		sets[i] = cols[i] + " = " + phs[i]
	}
	parts := []string{"UPDATE " + b.table + " SET " + strings.Join(sets, ", ")}
	parts = b.appendWhere(parts)
	return strings.Join(parts, " "), nil
}

// BuildDelete renders a DELETE statement plus any accumulated WHERE clause.
func (b *Builder) BuildDelete() string {
	parts := []string{"DELETE FROM " + b.table}
	parts = b.appendWhere(parts)
	return strings.Join(parts, " ")
}

// bindAssigns sanitizes the assignment columns and records their values in
// the parameter map. All columns are validated before any parameter is
// bound, so a failed call leaves the builder untouched.
func (b *Builder) bindAssigns(assigns []Assign) (cols, phs []string, err error) {
	if len(assigns) == 0 {
		return nil, nil, NewValidationError("assignments", "", "at least one column is required")
	}
	cols = make([]string, len(assigns))
	phs = make([]string, len(assigns))
	for i, a := range assigns {
		col, err := Ident(a.Column)
		if err != nil {
			return nil, nil, err
		}
		cols[i] = col
		phs[i] = ":" + placeholderName(col)
	}
	for i, a := range assigns {
		b.params[placeholderName(cols[i])] = a.Value
	}
	return cols, phs, nil
}

// appendWhere appends the WHERE clause to parts when predicates exist.
func (b *Builder) appendWhere(parts []string) []string {
	if len(b.preds) > 0 {
		parts = append(parts, "WHERE "+strings.Join(b.preds, " AND "))
	}
	return parts
}

// Params returns the placeholder to value map for the current statement.
// Read it after the corresponding Build* call. The map is live, not a copy.
func (b *Builder) Params() map[string]any {
	return b.params
}

// Reset clears all accumulated clause state and parameters. The table name
// is preserved.
func (b *Builder) Reset() {
	b.columns = nil
	b.preds = nil
	b.joins = nil
	b.orders = nil
	b.groups = nil
	b.limit = nil
	b.offset = nil
	b.params = make(map[string]any)
}
