// internal/filter/literal.go
package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/solatis/sieve/internal/types"
)

/*
 * Value coercion and SQL literal formatting.
 *
 * The declared field type selects how a condition value is checked and
 * rendered. Numbers cover float64/int/int64 mixing for JSON
 * compatibility; dates accept time.Time or ISO-8601 strings and render
 * as RFC3339 instants; strings render single-quoted with embedded
 * quotes doubled.
 *
 * Why function-based: the four scalar coercions have minimal behavior
 * variation, so plain functions beat four interface implementations.
 */

// dateOnly accepts calendar dates without a time component.
const dateOnly = "2006-01-02"

// toFloat64 converts value to float64 if it's a numeric type.
// Handles float64, int, int64 from JSON unmarshaling.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toTime converts value to a UTC instant if it's a date type.
// Accepts time.Time, RFC3339 strings, and date-only strings.
func toTime(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), true
	case string:
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t.UTC(), true
		}
		if t, err := time.Parse(dateOnly, d); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// scalarOfType reports whether value is a scalar matching the declared
// field type. nil is never a scalar; operators that accept null check
// for it before calling.
func scalarOfType(v any, ft types.FieldType) bool {
	if v == nil {
		return false
	}
	switch ft {
	case types.FieldTypeString:
		_, ok := v.(string)
		return ok
	case types.FieldTypeNumber:
		_, ok := toFloat64(v)
		return ok
	case types.FieldTypeBoolean:
		_, ok := v.(bool)
		return ok
	case types.FieldTypeDate:
		_, ok := toTime(v)
		return ok
	default:
		return false
	}
}

// toSlice normalizes the handful of slice shapes callers hand us
// (codec produces []any, shorthands may pass typed slices) to []any.
func toSlice(v any) ([]any, bool) {
	switch vv := v.(type) {
	case []any:
		return vv, true
	case []string:
		out := make([]any, len(vv))
		for i, s := range vv {
			out[i] = s
		}
		return out, true
	case []float64:
		out := make([]any, len(vv))
		for i, f := range vv {
			out[i] = f
		}
		return out, true
	case []int:
		out := make([]any, len(vv))
		for i, n := range vv {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

// quoteString renders a single-quoted SQL string literal.
// Embedded quotes are doubled, never backslash-escaped.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// formatLiteral renders a condition value as an SQL literal according
// to the declared field type. Returns "" for values the type cannot
// express; validation rejects those combinations before rendering.
func formatLiteral(v any, ft types.FieldType) string {
	if v == nil {
		return "NULL"
	}
	switch ft {
	case types.FieldTypeNumber:
		f, ok := toFloat64(v)
		if !ok {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case types.FieldTypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return ""
		}
		if b {
			return "TRUE"
		}
		return "FALSE"
	case types.FieldTypeDate:
		t, ok := toTime(v)
		if !ok {
			return ""
		}
		return quoteString(t.Format(time.RFC3339))
	case types.FieldTypeString:
		s, ok := v.(string)
		if !ok {
			return ""
		}
		return quoteString(s)
	default:
		return ""
	}
}
