// internal/filter/builder.go
package filter

import (
	"github.com/solatis/sieve/internal/types"
)

/*
 * Builder façade.
 *
 * Fluent incremental assembly over one root group plus configuration
 * (field-type overrides, allowed-field whitelist, max nesting depth)
 * and a memoized error list. AddCondition validates immediately: a
 * rejected condition records an error and leaves the tree unchanged.
 * AddGroup hands a child builder sharing the same configuration to the
 * caller and appends the resulting subtree to the parent; ownership of
 * the subtree transfers, and the child builder is not reused.
 *
 * ToSQL/ToStructured ensure validity first and degrade to empty output
 * on any failure, so an invalid non-trivial filter compiles the same as
 * no filter at all (see validate.go for why that trade-off stands).
 *
 * A Builder is not safe for concurrent mutation; independent builders
 * need no coordination. The operator registry they share is immutable.
 */

// Builder assembles, validates, and compiles one filter tree.
type Builder struct {
	root      *Node
	cfg       Config
	reg       *Registry
	qualifier string

	// rejected records conditions refused at add time; they never made
	// it into the tree, so revalidation alone would lose them.
	rejected []types.ValidationError

	// errs memoizes the last computed full error list.
	errs  []types.ValidationError
	dirty bool
}

// Option configures a Builder at construction time.
type Option func(*Builder)

// WithLogic sets the root group's connective (default AND).
func WithLogic(logic types.Logic) Option {
	return func(b *Builder) { b.root.Logic = logic }
}

// WithMaxDepth bounds group nesting below the root.
func WithMaxDepth(depth int) Option {
	return func(b *Builder) { b.cfg.MaxDepth = depth }
}

// WithAllowedFields whitelists filterable field names.
func WithAllowedFields(fields ...string) Option {
	return func(b *Builder) {
		b.cfg.AllowedFields = append([]string(nil), fields...)
	}
}

// WithFieldTypes installs a field-to-type table, typically from a
// schema catalog. Entries override the inline declared type.
func WithFieldTypes(table map[string]types.FieldType) Option {
	return func(b *Builder) {
		if b.cfg.FieldTypes == nil {
			b.cfg.FieldTypes = make(map[string]types.FieldType, len(table))
		}
		for k, v := range table {
			b.cfg.FieldTypes[k] = v
		}
	}
}

// WithFieldType declares the type of a single field.
func WithFieldType(field string, ft types.FieldType) Option {
	return WithFieldTypes(map[string]types.FieldType{field: ft})
}

// WithRegistry substitutes the operator table. Intended for tests.
func WithRegistry(reg *Registry) Option {
	return func(b *Builder) { b.reg = reg }
}

// WithQualifier prefixes every field reference in SQL output at render
// time.
func WithQualifier(qualifier string) Option {
	return func(b *Builder) { b.qualifier = qualifier }
}

// New constructs an empty Builder with an AND root group and the
// default nesting limit.
func New(opts ...Option) *Builder {
	b := &Builder{
		root:  Group(types.LogicAnd),
		cfg:   Config{MaxDepth: types.DefaultMaxNestingDepth},
		reg:   DefaultRegistry(),
		dirty: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromNode constructs a Builder around an existing tree, wrapping a
// bare condition in an AND group. Used when rehydrating saved filters.
func FromNode(root *Node, opts ...Option) *Builder {
	b := New(opts...)
	if root != nil {
		if root.Kind == NodeGroup {
			b.root = root
		} else {
			b.root.Children = append(b.root.Children, root)
		}
	}
	return b
}

// AddCondition validates the condition immediately and either appends
// it or records an error and leaves the tree unchanged.
func (b *Builder) AddCondition(field string, op Operator, value any, ft types.FieldType) *Builder {
	node := Condition(field, op, value, ft)
	if err := validateCondition(b.reg, b.cfg, node); err != nil {
		b.rejected = append(b.rejected, *err)
		b.dirty = true
		return b
	}
	b.root.Children = append(b.root.Children, node)
	b.dirty = true
	return b
}

// AddGroup appends a nested group assembled by configure against a
// child builder that shares this builder's configuration. The child
// tree's ownership transfers to the parent; the child builder must not
// be reused afterwards.
func (b *Builder) AddGroup(logic types.Logic, configure func(*Builder)) *Builder {
	child := &Builder{
		root:      Group(logic),
		cfg:       b.cfg,
		reg:       b.reg,
		qualifier: b.qualifier,
	}
	if configure != nil {
		configure(child)
	}
	b.root.Children = append(b.root.Children, child.root)
	b.rejected = append(b.rejected, child.rejected...)
	b.dirty = true
	return b
}

// Equals appends field = value. Declared type defaults to string unless
// the field-type table overrides it.
func (b *Builder) Equals(field string, value any) *Builder {
	return b.AddCondition(field, OpEq, value, types.FieldTypeString)
}

// NotEquals appends field <> value.
func (b *Builder) NotEquals(field string, value any) *Builder {
	return b.AddCondition(field, OpNe, value, types.FieldTypeString)
}

// GreaterThan appends field > value, inferring a declared type of date
// or number from the value's shape.
func (b *Builder) GreaterThan(field string, value any) *Builder {
	return b.AddCondition(field, OpGt, value, inferRangeType(value))
}

// LessThan appends field < value, inferring a declared type of date or
// number from the value's shape.
func (b *Builder) LessThan(field string, value any) *Builder {
	return b.AddCondition(field, OpLt, value, inferRangeType(value))
}

// Between appends an inclusive range predicate. Like the other
// shorthands it declares string unless the field-type table overrides;
// since between supports number and date only, callers either register
// the field's type or use AddCondition with an explicit one.
func (b *Builder) Between(field string, lo, hi any) *Builder {
	return b.AddCondition(field, OpBetween, []any{lo, hi}, types.FieldTypeString)
}

// In appends a membership predicate over the given values.
func (b *Builder) In(field string, values ...any) *Builder {
	return b.AddCondition(field, OpIn, values, types.FieldTypeString)
}

// Contains appends a case-insensitive substring predicate.
func (b *Builder) Contains(field, pattern string) *Builder {
	return b.AddCondition(field, OpContains, pattern, types.FieldTypeString)
}

// StartsWith appends a case-insensitive prefix predicate.
func (b *Builder) StartsWith(field, pattern string) *Builder {
	return b.AddCondition(field, OpStartsWith, pattern, types.FieldTypeString)
}

// EndsWith appends a case-insensitive suffix predicate.
func (b *Builder) EndsWith(field, pattern string) *Builder {
	return b.AddCondition(field, OpEndsWith, pattern, types.FieldTypeString)
}

// Matches appends a regular-expression predicate.
func (b *Builder) Matches(field, pattern string) *Builder {
	return b.AddCondition(field, OpRegex, pattern, types.FieldTypeString)
}

// IsEmpty appends a NULL-or-empty predicate.
func (b *Builder) IsEmpty(field string) *Builder {
	return b.AddCondition(field, OpIsEmpty, nil, types.FieldTypeString)
}

// IsNotEmpty appends a NOT-NULL-and-not-empty predicate.
func (b *Builder) IsNotEmpty(field string) *Builder {
	return b.AddCondition(field, OpIsNotEmpty, nil, types.FieldTypeString)
}

// IsValid recomputes and caches the full error list, returning whether
// it is empty.
func (b *Builder) IsValid() bool {
	b.errs = append(append([]types.ValidationError(nil), b.rejected...),
		Validate(b.reg, b.cfg, b.root)...)
	b.dirty = false
	return len(b.errs) == 0
}

// Errors returns the last computed error list, recomputing first if the
// tree changed since the previous validation.
func (b *Builder) Errors() []types.ValidationError {
	if b.dirty {
		b.IsValid()
	}
	return b.errs
}

// ensureValid revalidates only when the tree changed since the last
// pass.
func (b *Builder) ensureValid() bool {
	if b.dirty {
		return b.IsValid()
	}
	return len(b.errs) == 0
}

// ToSQL compiles the tree to an SQL fragment, or "" when the filter is
// empty or any validation failure exists.
func (b *Builder) ToSQL() string {
	if !b.ensureValid() {
		return ""
	}
	return CompileText(b.reg, b.cfg, b.root, TextOptions{Qualifier: b.qualifier})
}

// ToStructured compiles the tree to a nested AND/OR object. Empty and
// invalid filters both yield an empty object.
func (b *Builder) ToStructured() map[string]any {
	if !b.ensureValid() {
		return map[string]any{}
	}
	out := CompileStructured(b.reg, b.cfg, b.root)
	if out == nil {
		return map[string]any{}
	}
	return out
}

// Clone deep-copies the tree and configuration. Conditions rejected at
// add time travel with the clone; they are part of the builder's state,
// not of the memoized error list. The cached error list itself is not
// carried over; errors are recomputed on the next validation, so the
// clone's outputs match the source's at clone time.
func (b *Builder) Clone() *Builder {
	return &Builder{
		root:      b.root.Clone(),
		cfg:       b.cfg.clone(),
		reg:       b.reg,
		qualifier: b.qualifier,
		rejected:  append([]types.ValidationError(nil), b.rejected...),
		dirty:     true,
	}
}

// Count returns the number of leaf conditions across the whole tree.
func (b *Builder) Count() int {
	return b.root.CountConditions()
}

// Clear drops the tree and all recorded errors, keeping configuration.
func (b *Builder) Clear() *Builder {
	b.root = Group(b.root.Logic)
	b.rejected = nil
	b.errs = nil
	b.dirty = true
	return b
}

// Optimize reorders children so conditions on indexed fields evaluate
// first. Semantics are unchanged; reapplying with the same set is a
// no-op.
func (b *Builder) Optimize(indexedFields ...string) *Builder {
	Optimize(b.root, indexedFields)
	return b
}

// Root exposes the underlying tree for persistence and inspection.
// Mutating it directly bypasses add-time validation.
func (b *Builder) Root() *Node {
	return b.root
}

// inferRangeType picks date for time.Time values and ISO date strings,
// number for everything else.
func inferRangeType(value any) types.FieldType {
	if _, ok := toTime(value); ok {
		return types.FieldTypeDate
	}
	return types.FieldTypeNumber
}
