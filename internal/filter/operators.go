// internal/filter/operators.go
package filter

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/solatis/sieve/internal/types"
)

/*
 * Operator registry.
 *
 * Implements the 14 filter operators as immutable Definition entries:
 * a declared-type support set, a value validator, and one renderer per
 * backend (SQL text, structured object). Validators never panic; a
 * condition whose operator/type/value combination fails validation
 * renders to nothing in either backend.
 *
 * The registry is process-wide configuration initialized once at
 * startup and read through Lookup. It is never mutated afterwards, so
 * concurrent reads need no synchronization. Builders take a registry by
 * injection so tests can substitute an alternate table.
 *
 * Why function fields: 14 operators with minimal behavior variation
 * compose cleaner as function values in a table than as 14 interface
 * implementations.
 */

// Operator names a comparison in the registry.
type Operator string

const (
	OpEq         Operator = "eq"
	OpNe         Operator = "ne"
	OpGt         Operator = "gt"
	OpLt         Operator = "lt"
	OpGte        Operator = "gte"
	OpLte        Operator = "lte"
	OpIn         Operator = "in"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpRegex      Operator = "regex"
	OpBetween    Operator = "between"
	OpIsEmpty    Operator = "isEmpty"
	OpIsNotEmpty Operator = "isNotEmpty"
)

// Definition is one immutable registry entry.
type Definition struct {
	Name  Operator
	Types []types.FieldType

	// Validate reports whether value is acceptable for this operator
	// under the declared field type. Never panics.
	Validate func(value any, ft types.FieldType) bool

	// Text renders the predicate as an SQL fragment. The field name
	// arrives already qualified when the caller supplied a table prefix.
	Text func(field string, value any, ft types.FieldType) string

	// Structured renders the predicate as a nested filter object, or
	// nil when the operator has no structured form for the inputs.
	Structured func(field string, value any, ft types.FieldType) map[string]any
}

// SupportsType reports whether the declared type is in the operator's
// support set.
func (d Definition) SupportsType(ft types.FieldType) bool {
	for _, t := range d.Types {
		if t == ft {
			return true
		}
	}
	return false
}

// Registry is an immutable operator table.
type Registry struct {
	defs map[Operator]Definition
}

// NewRegistry builds a registry from the given definitions.
// Intended for tests that substitute alternate operator tables; use
// DefaultRegistry for the built-in set.
func NewRegistry(defs ...Definition) *Registry {
	m := make(map[Operator]Definition, len(defs))
	for _, d := range defs {
		m[d.Name] = d
	}
	return &Registry{defs: m}
}

// Lookup returns the definition for op, if registered.
func (r *Registry) Lookup(op Operator) (Definition, bool) {
	d, ok := r.defs[op]
	return d, ok
}

// Supports reports whether op is registered and supports the declared
// field type.
func (r *Registry) Supports(op Operator, ft types.FieldType) bool {
	d, ok := r.defs[op]
	return ok && d.SupportsType(ft)
}

// Operators returns the registered operator names in sorted order.
func (r *Registry) Operators() []Operator {
	out := make([]Operator, 0, len(r.defs))
	for op := range r.defs {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var defaultRegistry = NewRegistry(builtinDefinitions()...)

// DefaultRegistry returns the process-wide operator table.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// normalizeValue converts a validated value to its canonical
// structured-output form: numbers as float64, dates as RFC3339 strings,
// slices element-wise. Values the type cannot coerce pass through.
func normalizeValue(v any, ft types.FieldType) any {
	if v == nil {
		return nil
	}
	if values, ok := toSlice(v); ok {
		out := make([]any, len(values))
		for i, e := range values {
			out[i] = normalizeScalar(e, ft)
		}
		return out
	}
	return normalizeScalar(v, ft)
}

func normalizeScalar(v any, ft types.FieldType) any {
	switch ft {
	case types.FieldTypeNumber:
		if f, ok := toFloat64(v); ok {
			return f
		}
	case types.FieldTypeDate:
		if t, ok := toTime(v); ok {
			return t.Format(time.RFC3339)
		}
	}
	return v
}

func builtinDefinitions() []Definition {
	scalarTypes := []types.FieldType{
		types.FieldTypeString,
		types.FieldTypeNumber,
		types.FieldTypeBoolean,
		types.FieldTypeDate,
	}
	orderedTypes := []types.FieldType{
		types.FieldTypeNumber,
		types.FieldTypeDate,
	}
	memberTypes := []types.FieldType{
		types.FieldTypeString,
		types.FieldTypeNumber,
		types.FieldTypeBoolean,
	}
	stringOnly := []types.FieldType{types.FieldTypeString}
	emptinessTypes := []types.FieldType{
		types.FieldTypeString,
		types.FieldTypeNumber,
		types.FieldTypeDate,
	}

	return []Definition{
		{
			Name:     OpEq,
			Types:    scalarTypes,
			Validate: validateNullableScalar,
			Text: func(field string, value any, ft types.FieldType) string {
				if value == nil {
					return field + " IS NULL"
				}
				return field + " = " + formatLiteral(value, ft)
			},
			Structured: func(field string, value any, ft types.FieldType) map[string]any {
				return map[string]any{field: normalizeValue(value, ft)}
			},
		},
		{
			Name:     OpNe,
			Types:    scalarTypes,
			Validate: validateNullableScalar,
			Text: func(field string, value any, ft types.FieldType) string {
				if value == nil {
					return field + " IS NOT NULL"
				}
				return field + " <> " + formatLiteral(value, ft)
			},
			Structured: func(field string, value any, ft types.FieldType) map[string]any {
				return map[string]any{field: map[string]any{"not": normalizeValue(value, ft)}}
			},
		},
		comparisonDefinition(OpGt, ">", "gt", orderedTypes),
		comparisonDefinition(OpLt, "<", "lt", orderedTypes),
		comparisonDefinition(OpGte, ">=", "gte", orderedTypes),
		comparisonDefinition(OpLte, "<=", "lte", orderedTypes),
		{
			Name:  OpIn,
			Types: memberTypes,
			Validate: func(value any, ft types.FieldType) bool {
				values, ok := toSlice(value)
				if !ok || len(values) == 0 || len(values) > types.MaxInValues {
					return false
				}
				for _, v := range values {
					if !scalarOfType(v, ft) {
						return false
					}
				}
				return true
			},
			Text: func(field string, value any, ft types.FieldType) string {
				values, _ := toSlice(value)
				literals := make([]string, len(values))
				for i, v := range values {
					literals[i] = formatLiteral(v, ft)
				}
				return field + " IN (" + strings.Join(literals, ", ") + ")"
			},
			Structured: func(field string, value any, ft types.FieldType) map[string]any {
				values, _ := toSlice(value)
				normalized := make([]any, len(values))
				for i, v := range values {
					normalized[i] = normalizeValue(v, ft)
				}
				return map[string]any{field: map[string]any{"in": normalized}}
			},
		},
		patternDefinition(OpContains, "contains", func(p string) string { return "%" + p + "%" }),
		patternDefinition(OpStartsWith, "startsWith", func(p string) string { return p + "%" }),
		patternDefinition(OpEndsWith, "endsWith", func(p string) string { return "%" + p }),
		{
			Name:  OpRegex,
			Types: stringOnly,
			Validate: func(value any, ft types.FieldType) bool {
				pattern, ok := value.(string)
				if !ok || pattern == "" || len(pattern) > types.MaxPatternLength {
					return false
				}
				_, err := regexp.Compile(pattern)
				return err == nil
			},
			Text: func(field string, value any, ft types.FieldType) string {
				pattern, _ := value.(string)
				return field + " ~ " + quoteString(pattern)
			},
			Structured: func(field string, value any, ft types.FieldType) map[string]any {
				pattern, _ := value.(string)
				return map[string]any{field: map[string]any{"regex": pattern}}
			},
		},
		{
			Name:  OpBetween,
			Types: orderedTypes,
			Validate: func(value any, ft types.FieldType) bool {
				bounds, ok := toSlice(value)
				if !ok || len(bounds) != 2 {
					return false
				}
				return scalarOfType(bounds[0], ft) && scalarOfType(bounds[1], ft)
			},
			Text: func(field string, value any, ft types.FieldType) string {
				bounds, _ := toSlice(value)
				return field + " BETWEEN " + formatLiteral(bounds[0], ft) +
					" AND " + formatLiteral(bounds[1], ft)
			},
			Structured: func(field string, value any, ft types.FieldType) map[string]any {
				// Inclusive range as two ANDed comparisons.
				bounds, _ := toSlice(value)
				return map[string]any{
					types.LogicAnd.String(): []any{
						map[string]any{field: map[string]any{"gte": normalizeValue(bounds[0], ft)}},
						map[string]any{field: map[string]any{"lte": normalizeValue(bounds[1], ft)}},
					},
				}
			},
		},
		{
			Name:     OpIsEmpty,
			Types:    emptinessTypes,
			Validate: validateNoValue,
			Text: func(field string, value any, ft types.FieldType) string {
				if ft == types.FieldTypeString {
					return "(" + field + " IS NULL OR " + field + " = '')"
				}
				return field + " IS NULL"
			},
			Structured: func(field string, value any, ft types.FieldType) map[string]any {
				if ft == types.FieldTypeString {
					return map[string]any{
						types.LogicOr.String(): []any{
							map[string]any{field: nil},
							map[string]any{field: ""},
						},
					}
				}
				return map[string]any{field: nil}
			},
		},
		{
			Name:     OpIsNotEmpty,
			Types:    emptinessTypes,
			Validate: validateNoValue,
			Text: func(field string, value any, ft types.FieldType) string {
				if ft == types.FieldTypeString {
					return "(" + field + " IS NOT NULL AND " + field + " <> '')"
				}
				return field + " IS NOT NULL"
			},
			Structured: func(field string, value any, ft types.FieldType) map[string]any {
				if ft == types.FieldTypeString {
					return map[string]any{
						types.LogicAnd.String(): []any{
							map[string]any{field: map[string]any{"not": nil}},
							map[string]any{field: map[string]any{"not": ""}},
						},
					}
				}
				return map[string]any{field: map[string]any{"not": nil}}
			},
		},
	}
}

// comparisonDefinition builds one ordered-comparison operator (gt, lt,
// gte, lte). Date values compare as ISO instants.
func comparisonDefinition(name Operator, sqlOp, structuredKey string, supported []types.FieldType) Definition {
	return Definition{
		Name:  name,
		Types: supported,
		Validate: func(value any, ft types.FieldType) bool {
			return scalarOfType(value, ft)
		},
		Text: func(field string, value any, ft types.FieldType) string {
			return field + " " + sqlOp + " " + formatLiteral(value, ft)
		},
		Structured: func(field string, value any, ft types.FieldType) map[string]any {
			return map[string]any{field: map[string]any{structuredKey: normalizeValue(value, ft)}}
		},
	}
}

// patternDefinition builds one case-insensitive string pattern operator
// (contains, startsWith, endsWith). shape places the wildcards around
// the pattern; rendering lowers both sides so matching is
// case-insensitive on any backend.
func patternDefinition(name Operator, structuredKey string, shape func(string) string) Definition {
	return Definition{
		Name:  name,
		Types: []types.FieldType{types.FieldTypeString},
		Validate: func(value any, ft types.FieldType) bool {
			pattern, ok := value.(string)
			return ok && pattern != "" && len(pattern) <= types.MaxPatternLength
		},
		Text: func(field string, value any, ft types.FieldType) string {
			pattern, _ := value.(string)
			return "LOWER(" + field + ") LIKE " + quoteString(shape(strings.ToLower(pattern)))
		},
		Structured: func(field string, value any, ft types.FieldType) map[string]any {
			pattern, _ := value.(string)
			return map[string]any{field: map[string]any{
				structuredKey: pattern,
				"mode":        "insensitive",
			}}
		},
	}
}

// validateNullableScalar accepts nil (rendered as IS NULL / IS NOT
// NULL) or a scalar matching the declared type.
func validateNullableScalar(value any, ft types.FieldType) bool {
	if value == nil {
		return true
	}
	return scalarOfType(value, ft)
}

// validateNoValue accepts only the absence of a value.
func validateNoValue(value any, ft types.FieldType) bool {
	return value == nil
}
