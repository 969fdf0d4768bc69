// Package types provides domain models shared across Sieve components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library so the compiler core stays embeddable. ID utilities in ids.go
// import uuid but are isolated for selective inclusion.
package types

import (
	"fmt"
	"strings"
)

// FieldType is the caller-declared type of a filtered field.
// It is a hint selecting validation and rendering rules, not something
// derived from the runtime shape of the condition value.
type FieldType int

const (
	FieldTypeUnspecified FieldType = iota
	FieldTypeString
	FieldTypeNumber
	FieldTypeBoolean
	FieldTypeDate
	FieldTypeArray
)

// String returns the wire name of the field type.
func (t FieldType) String() string {
	switch t {
	case FieldTypeString:
		return "string"
	case FieldTypeNumber:
		return "number"
	case FieldTypeBoolean:
		return "boolean"
	case FieldTypeDate:
		return "date"
	case FieldTypeArray:
		return "array"
	default:
		return "unspecified"
	}
}

// ParseFieldType converts a wire name to a FieldType.
// Rejects unknown names to keep persisted definitions unambiguous.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string":
		return FieldTypeString, nil
	case "number":
		return FieldTypeNumber, nil
	case "boolean":
		return FieldTypeBoolean, nil
	case "date":
		return FieldTypeDate, nil
	case "array":
		return FieldTypeArray, nil
	default:
		return FieldTypeUnspecified, fmt.Errorf("%w: %q", ErrUnknownFieldType, s)
	}
}

// Logic is the boolean connective of a filter group.
type Logic int

const (
	LogicAnd Logic = iota
	LogicOr
)

// String returns the SQL spelling of the connective.
func (l Logic) String() string {
	if l == LogicOr {
		return "OR"
	}
	return "AND"
}

// ParseLogic converts a case-insensitive AND/OR token to a Logic.
func ParseLogic(s string) (Logic, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AND":
		return LogicAnd, nil
	case "OR":
		return LogicOr, nil
	default:
		return LogicAnd, fmt.Errorf("%w: %q", ErrUnknownLogic, s)
	}
}

// ValidationError describes one rejected condition or subtree.
// Validation failures are collected, never raised; callers inspect the
// list through the builder's IsValid/Errors accessors.
type ValidationError struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Reason   string `json:"reason"`
}

// Error implements error for contexts that report a single failure.
func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s: %s", e.Field, e.Operator, e.Reason)
}

// Resource limits enforced by the compiler to keep validation and
// rendering costs proportional to reasonable tree sizes.
const (
	// DefaultMaxNestingDepth bounds group nesting below the root.
	// The root group sits at depth 0; three nested levels cover every
	// filter shape observed in saved-filter corpora.
	DefaultMaxNestingDepth = 3

	// MaxInValues limits IN operator list size to prevent quadratic
	// membership rendering and pathological literal lists.
	MaxInValues = 64

	// MaxFieldNameLength prevents excessively long identifiers from
	// reaching generated query text.
	MaxFieldNameLength = 128

	// MaxPatternLength bounds contains/startsWith/endsWith/regex
	// patterns; longer patterns belong in full-text search, not filters.
	MaxPatternLength = 512
)
