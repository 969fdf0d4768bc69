// internal/filter/validate.go
package filter

import (
	"github.com/solatis/sieve/internal/types"
)

/*
 * Tree validation.
 *
 * Conditions are checked in a fixed order: field membership in the
 * optional whitelist, operator support for the declared type, then the
 * operator's own value validator. Groups are walked depth-first and
 * leaf errors concatenated. A subtree nested deeper than the configured
 * maximum yields exactly one synthetic error for the whole subtree; the
 * walk does not descend into it.
 *
 * Validation never raises. Failures are collected as ValidationError
 * records and surfaced through the builder; compiled output degrades to
 * empty instead of halting. An invalid non-trivial filter is therefore
 * indistinguishable from "no filter at all" - a deliberate, known
 * trade-off that dependent call sites rely on.
 */

// Config carries the caller-supplied validation context.
type Config struct {
	// AllowedFields whitelists filterable fields. Empty means any
	// field is allowed.
	AllowedFields []string

	// FieldTypes maps field names to declared types, overriding the
	// inline type on a condition. Typically fed from a schema catalog.
	FieldTypes map[string]types.FieldType

	// MaxDepth bounds group nesting below the root (root depth is 0).
	// Negative values are caller misconfiguration and unsupported.
	MaxDepth int
}

// clone copies the config so builder clones never share maps or slices.
func (c Config) clone() Config {
	out := Config{MaxDepth: c.MaxDepth}
	if c.AllowedFields != nil {
		out.AllowedFields = append([]string(nil), c.AllowedFields...)
	}
	if c.FieldTypes != nil {
		out.FieldTypes = make(map[string]types.FieldType, len(c.FieldTypes))
		for k, v := range c.FieldTypes {
			out.FieldTypes[k] = v
		}
	}
	return out
}

// resolveType returns the declared type for a condition, preferring the
// config's field-type table over the inline declaration.
func (c Config) resolveType(n *Node) types.FieldType {
	if ft, ok := c.FieldTypes[n.Field]; ok {
		return ft
	}
	return n.Type
}

// fieldAllowed reports whether the whitelist admits the field.
func (c Config) fieldAllowed(field string) bool {
	if len(c.AllowedFields) == 0 {
		return true
	}
	for _, f := range c.AllowedFields {
		if f == field {
			return true
		}
	}
	return false
}

// Validation failure reasons. Stable strings so callers can match on
// them when presenting diagnostics.
const (
	reasonFieldRequired  = "field name is required"
	reasonFieldTooLong   = "field name exceeds maximum length"
	reasonFieldNotListed = "field is not in the allowed list"
	reasonUnknownOp      = "operator is not registered"
	reasonTypeMismatch   = "operator does not support the declared field type"
	reasonInvalidValue   = "value is invalid for the operator"
	reasonTooDeep        = "group nesting exceeds the maximum depth"
)

// validateCondition checks a single leaf against the registry and
// config. Returns nil when the condition is acceptable.
func validateCondition(reg *Registry, cfg Config, n *Node) *types.ValidationError {
	if n.Field == "" {
		return &types.ValidationError{Field: n.Field, Operator: string(n.Op), Reason: reasonFieldRequired}
	}
	if len(n.Field) > types.MaxFieldNameLength {
		return &types.ValidationError{Field: n.Field, Operator: string(n.Op), Reason: reasonFieldTooLong}
	}
	if !cfg.fieldAllowed(n.Field) {
		return &types.ValidationError{Field: n.Field, Operator: string(n.Op), Reason: reasonFieldNotListed}
	}

	def, ok := reg.Lookup(n.Op)
	if !ok {
		return &types.ValidationError{Field: n.Field, Operator: string(n.Op), Reason: reasonUnknownOp}
	}

	ft := cfg.resolveType(n)
	if !def.SupportsType(ft) {
		return &types.ValidationError{Field: n.Field, Operator: string(n.Op), Reason: reasonTypeMismatch}
	}
	if !def.Validate(n.Value, ft) {
		return &types.ValidationError{Field: n.Field, Operator: string(n.Op), Reason: reasonInvalidValue}
	}
	return nil
}

// validateTree walks the subtree depth-first collecting errors. depth
// is n's nesting level relative to the root group (root depth 0).
func validateTree(reg *Registry, cfg Config, n *Node, depth int) []types.ValidationError {
	if n == nil {
		return nil
	}
	if n.Kind == NodeCondition {
		if err := validateCondition(reg, cfg, n); err != nil {
			return []types.ValidationError{*err}
		}
		return nil
	}

	if depth > cfg.MaxDepth {
		// One synthetic error for the whole subtree; no descent.
		return []types.ValidationError{{Reason: reasonTooDeep}}
	}

	var errs []types.ValidationError
	for _, child := range n.Children {
		if child.Kind == NodeGroup {
			errs = append(errs, validateTree(reg, cfg, child, depth+1)...)
		} else {
			errs = append(errs, validateTree(reg, cfg, child, depth)...)
		}
	}
	return errs
}

// Validate checks the tree rooted at root against the registry and
// config, returning every failure found. The root group sits at depth 0.
func Validate(reg *Registry, cfg Config, root *Node) []types.ValidationError {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return validateTree(reg, cfg, root, 0)
}
