package sql

import (
	"strconv"
	"strings"
)

// BindNamed converts a statement with named ":placeholder" tokens into
// Postgres ordinal form ("$1", "$2", ...) and returns the positional
// argument slice drawn from params.
//
// Ordinals are assigned in order of first appearance; a name appearing more
// than once reuses its ordinal. Placeholder scanning skips single-quoted
// strings, double-quoted identifiers and Postgres "::" casts.
//
// BindNamed enforces the builder invariant that placeholders and parameters
// correspond exactly: a placeholder with no parameter entry and a parameter
// no placeholder references are both errors.
func BindNamed(query string, params map[string]any) (string, []any, error) {
	var (
		sb       strings.Builder
		args     []any
		ordinals = make(map[string]int, len(params))
	)
	sb.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch c {
		case '\'', '"':
			end := skipQuoted(query, i)
			sb.WriteString(query[i:end])
			i = end - 1
		case ':':
			if i+1 < len(query) && query[i+1] == ':' {
				sb.WriteString("::")
				i++
				continue
			}
			name := placeholderAt(query, i+1)
			if name == "" {
				sb.WriteByte(c)
				continue
			}
			ord, ok := ordinals[name]
			if !ok {
				value, bound := params[name]
				if !bound {
					return "", nil, NewValidationError("parameters", name, "statement references a placeholder with no bound value")
				}
				args = append(args, value)
				ord = len(args)
				ordinals[name] = ord
			}
			sb.WriteString("$" + strconv.Itoa(ord))
			i += len(name)
		default:
			sb.WriteByte(c)
		}
	}
	for name := range params {
		if _, ok := ordinals[name]; !ok {
			return "", nil, NewValidationError("parameters", name, "bound value is not referenced by any placeholder")
		}
	}
	return sb.String(), args, nil
}

// skipQuoted returns the index just past the quoted region starting at
// query[start]. Doubled quote characters inside the region are treated as
// escapes. An unterminated region extends to the end of the statement.
func skipQuoted(query string, start int) int {
	quote := query[start]
	for i := start + 1; i < len(query); i++ {
		if query[i] != quote {
			continue
		}
		if i+1 < len(query) && query[i+1] == quote {
			i++
			continue
		}
		return i + 1
	}
	return len(query)
}

// placeholderAt extracts the placeholder name starting at query[start].
// Names follow identifier rules: a leading letter or underscore, then
// letters, digits or underscores.
func placeholderAt(query string, start int) string {
	if start >= len(query) || !isNameStart(query[start]) {
		return ""
	}
	end := start + 1
	for end < len(query) && isNameByte(query[end]) {
		end++
	}
	return query[start:end]
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
