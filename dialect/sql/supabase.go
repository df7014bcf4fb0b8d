package sql

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SupabaseBuilder extends Builder with predicates for the Postgres features
// Supabase exposes: full-text search, earthdistance radius filters, JSON
// containment, case-insensitive matching and array overlap, plus RETURNING
// variants of the mutating statements.
//
// It embeds the base clause accumulator, so all Builder methods remain
// available and share the same predicate list and parameter map.
type SupabaseBuilder struct {
	*Builder
}

// NewSupabaseBuilder returns a SupabaseBuilder bound to the given table.
func NewSupabaseBuilder(table string) (*SupabaseBuilder, error) {
	b, err := NewBuilder(table)
	if err != nil {
		return nil, err
	}
	return &SupabaseBuilder{Builder: b}, nil
}

// ftsConfig is the text-search configuration every full-text predicate is
// pinned to.
const ftsConfig = "english"

// FullTextSearch appends a tsvector match predicate against the column,
// parameterizing the search term.
func (b *SupabaseBuilder) FullTextSearch(column, term string) error {
	col, err := Ident(column)
	if err != nil {
		return err
	}
	ph := b.nextPlaceholder(col, "fts")
	b.preds = append(b.preds, "to_tsvector('"+ftsConfig+"', "+col+") @@ plainto_tsquery('"+ftsConfig+"', :"+ph+")")
	b.params[ph] = term
	return nil
}

// WithinRadius appends an earthdistance predicate comparing the row's
// lat/lng columns against a parameterized point. The radius is converted
// from kilometers to meters and rendered as a literal threshold.
func (b *SupabaseBuilder) WithinRadius(latColumn, lngColumn string, lat, lng, radiusKm float64) error {
	latCol, err := Ident(latColumn)
	if err != nil {
		return err
	}
	lngCol, err := Ident(lngColumn)
	if err != nil {
		return err
	}
	latPh := b.nextPlaceholder(latCol, "lat")
	b.params[latPh] = lat
	lngPh := b.nextPlaceholder(lngCol, "lng")
	b.params[lngPh] = lng
	meters := strconv.FormatFloat(radiusKm*1000, 'f', -1, 64)
	b.preds = append(b.preds,
		"earth_distance(ll_to_earth("+latCol+", "+lngCol+"), ll_to_earth(:"+latPh+", :"+lngPh+")) <= "+meters)
	return nil
}

// WhereJSONContains appends a predicate extracting a JSON field by key (as
// text) and comparing it to a parameterized value. The key is held to the
// same identifier rules as columns.
func (b *SupabaseBuilder) WhereJSONContains(column, key string, value any) error {
	col, err := Ident(column)
	if err != nil {
		return err
	}
	k, err := Ident(key)
	if err != nil {
		return err
	}
	ph := b.nextPlaceholder(col, "json")
	b.preds = append(b.preds, col+"->>'"+k+"' = :"+ph)
	b.params[ph] = value
	return nil
}

// WhereJSONArrayContains appends a JSON containment (@>) predicate. The
// value is serialized to JSON text before binding.
func (b *SupabaseBuilder) WhereJSONArrayContains(column string, value any) error {
	col, err := Ident(column)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return NewValidationError("json value", fmt.Sprint(value), "value is not JSON-encodable: "+err.Error())
	}
	ph := b.nextPlaceholder(col, "contains")
	b.preds = append(b.preds, col+" @> :"+ph)
	b.params[ph] = string(encoded)
	return nil
}

// WhereILike appends a case-insensitive pattern-match predicate. The caller
// supplies any wildcard characters within pattern.
func (b *SupabaseBuilder) WhereILike(column, pattern string) error {
	col, err := Ident(column)
	if err != nil {
		return err
	}
	ph := b.nextPlaceholder(col, "ilike")
	b.preds = append(b.preds, col+" ILIKE :"+ph)
	b.params[ph] = pattern
	return nil
}

// WhereArrayOverlaps appends an array-overlap (&&) predicate. The values are
// serialized into Postgres array-literal text before binding.
func (b *SupabaseBuilder) WhereArrayOverlaps(column string, values []any) error {
	col, err := Ident(column)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return NewValidationError("values", "", "array overlap requires at least one value")
	}
	ph := b.nextPlaceholder(col, "overlap")
	b.preds = append(b.preds, col+" && :"+ph)
	b.params[ph] = ArrayLiteral(values)
	return nil
}

// BuildInsertReturning renders an INSERT with a RETURNING clause. An empty
// column list returns all columns ("RETURNING *").
func (b *SupabaseBuilder) BuildInsertReturning(assigns []Assign, returning []string) (string, error) {
	stmt, err := b.BuildInsert(assigns)
	if err != nil {
		return "", err
	}
	return b.appendReturning(stmt, returning)
}

// BuildUpdateReturning renders an UPDATE with a RETURNING clause.
func (b *SupabaseBuilder) BuildUpdateReturning(assigns []Assign, returning []string) (string, error) {
	stmt, err := b.BuildUpdate(assigns)
	if err != nil {
		return "", err
	}
	return b.appendReturning(stmt, returning)
}

// BuildDeleteReturning renders a DELETE with a RETURNING clause.
func (b *SupabaseBuilder) BuildDeleteReturning(returning []string) (string, error) {
	return b.appendReturning(b.BuildDelete(), returning)
}

// BuildSelectWithFilters is a seam reserved for backend row-filtering policy
// such as row-level-security-aware rewriting. No rewriting is applied at
// present; the output is identical to BuildSelect.
func (b *SupabaseBuilder) BuildSelectWithFilters() string {
	return b.BuildSelect()
}

// appendReturning sanitizes the returning columns and appends the clause,
// which is always last on supported mutating statements.
func (b *SupabaseBuilder) appendReturning(stmt string, returning []string) (string, error) {
	if len(returning) == 0 {
		return stmt + " RETURNING *", nil
	}
	cols := make([]string, len(returning))
	for i, c := range returning {
		col, err := Ident(c)
		if err != nil {
			return "", err
		}
		cols[i] = col
	}
	return stmt + " RETURNING " + strings.Join(cols, ", "), nil
}

// nextPlaceholder builds a "<column>_<suffix>_<n>" parameter name, unique
// within the statement as long as Reset is called between independent
// statements.
func (b *SupabaseBuilder) nextPlaceholder(column, suffix string) string {
	return placeholderName(column) + "_" + suffix + "_" + strconv.Itoa(len(b.params))
}

// ArrayLiteral renders values as Postgres array-literal text, e.g.
// {"a","b"}. String elements are double-quoted with backslash and quote
// escaping, matching the text form lib/pq produces; other scalars are
// rendered with their default formatting.
func ArrayLiteral(values []any) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		switch v := v.(type) {
		case string:
			sb.WriteByte('"')
			sb.WriteString(strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), `"`, `\"`))
			sb.WriteByte('"')
		case nil:
			sb.WriteString("NULL")
		default:
			sb.WriteString(fmt.Sprint(v))
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
