// internal/filter/parse.go
package filter

import (
	"strconv"
	"strings"

	"github.com/solatis/sieve/internal/types"
)

/*
 * Mini parser for flat filter strings.
 *
 * Grammar: field:operator:value [AND|OR field:operator:value ...]
 *
 * Logic tokens are case-insensitive and set the connective of the one
 * flat group the parser builds; with a single group and one fixed
 * logic, alternating AND/OR in one string does not nest - the last
 * token wins. Preserved for compatibility with existing saved strings;
 * real associativity needs the builder API.
 *
 * Tokens with fewer than three colon-separated parts are silently
 * skipped. Scalar values are inferred as number, boolean, date, or
 * string; in/between values split on commas.
 */

// Parse builds a Builder from a flat filter string. Empty input yields
// ErrEmptyFilterInput; malformed tokens are skipped, and conditions the
// registry rejects are recorded on the builder rather than appended.
func Parse(input string, opts ...Option) (*Builder, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, types.ErrEmptyFilterInput
	}

	b := New(opts...)
	for _, token := range strings.Fields(input) {
		if logic, err := types.ParseLogic(token); err == nil {
			b.root.Logic = logic
			continue
		}

		parts := strings.SplitN(token, ":", 3)
		if len(parts) < 3 || parts[0] == "" || parts[1] == "" {
			continue
		}
		field, op := parts[0], Operator(parts[1])
		value, ft := inferToken(op, parts[2])
		b.AddCondition(field, op, value, ft)
	}
	return b, nil
}

// inferToken converts the raw value text of one token to a condition
// value and declared type.
func inferToken(op Operator, raw string) (any, types.FieldType) {
	switch op {
	case OpIsEmpty, OpIsNotEmpty:
		return nil, types.FieldTypeString
	case OpIn, OpBetween:
		items := strings.Split(raw, ",")
		values := make([]any, 0, len(items))
		ft := types.FieldTypeString
		for i, item := range items {
			v, t := inferScalar(item)
			if i == 0 {
				ft = t
			}
			values = append(values, v)
		}
		return values, ft
	default:
		return inferScalar(raw)
	}
}

// inferScalar guesses the declared type of a raw scalar token: number,
// boolean, date, then string.
func inferScalar(raw string) (any, types.FieldType) {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, types.FieldTypeNumber
	}
	switch raw {
	case "true":
		return true, types.FieldTypeBoolean
	case "false":
		return false, types.FieldTypeBoolean
	}
	if t, ok := toTime(raw); ok {
		return t, types.FieldTypeDate
	}
	return raw, types.FieldTypeString
}
