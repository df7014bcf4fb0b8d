package sql

import (
	"regexp"
	"strings"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores,
// dots for schema.name references). The first character must not be a digit.
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// joinCondRe matches the only join condition shape the builder accepts:
// "identifier operator identifier". Anything carrying extra tokens fails.
var joinCondRe = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_.]*)\s*(=|!=|<>|<=|>=|<|>)\s*([a-zA-Z_][a-zA-Z0-9_.]*)$`)

// Ident validates raw as a SQL identifier (table, column or join target) and
// returns it unchanged. Inputs containing any character outside [A-Za-z0-9_.],
// empty inputs, and inputs starting with a digit are rejected outright with a
// ValidationError; nothing is stripped or escaped.
func Ident(raw string) (string, error) {
	if raw == "" {
		return "", NewValidationError("identifier", raw, "identifier cannot be empty")
	}
	if len(raw) > 128 {
		return "", NewValidationError("identifier", raw, "identifier exceeds maximum length of 128 characters")
	}
	if !validIdentifierRe.MatchString(raw) {
		return "", NewValidationError("identifier", raw, "only letters, digits, underscores and dots are allowed, and the first character must not be a digit")
	}
	return raw, nil
}

// joinCondition validates a join condition against the structural
// "identifier operator identifier" pattern. This is a deliberately
// conservative check, not an expression parser.
func joinCondition(cond string) (string, error) {
	m := joinCondRe.FindStringSubmatch(strings.TrimSpace(cond))
	if m == nil {
		return "", NewValidationError("join condition", cond, "condition must have the form <identifier> <operator> <identifier>")
	}
	return m[1] + " " + m[2] + " " + m[3], nil
}

// placeholderName derives a parameter name from a column reference.
// Dots in schema- or table-qualified columns are flattened to underscores so
// the name stays a single token in the rendered statement.
func placeholderName(column string) string {
	return strings.ReplaceAll(column, ".", "_")
}
