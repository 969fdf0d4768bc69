// internal/filter/node.go
package filter

import (
	"github.com/solatis/sieve/internal/types"
)

/*
 * Condition/group tree.
 *
 * A filter is a recursive tagged tree: leaves are conditions (field,
 * operator, value, declared type) and interior nodes are groups (AND/OR
 * connective over ordered children of either kind). The two node kinds
 * share one struct with an explicit Kind discriminant; structural
 * inspection of which fields happen to be set is never used to tell
 * them apart.
 *
 * Trees are built purely by append and are never cyclic. Cloning is a
 * deep copy of the reachable subtree; at the sizes filters reach this
 * is cheaper to reason about than structural sharing.
 */

// NodeKind discriminates the two node variants.
type NodeKind int

const (
	NodeCondition NodeKind = iota
	NodeGroup
)

// String returns the wire name of the node kind.
func (k NodeKind) String() string {
	if k == NodeGroup {
		return "group"
	}
	return "condition"
}

// Node is one vertex of a filter tree. Kind selects which field set is
// meaningful: Field/Op/Value/Type for conditions, Logic/Children for
// groups.
type Node struct {
	Kind NodeKind

	// Condition fields
	Field string
	Op    Operator
	Value any
	Type  types.FieldType

	// Group fields
	Logic    types.Logic
	Children []*Node
}

// Condition constructs a leaf predicate node.
func Condition(field string, op Operator, value any, ft types.FieldType) *Node {
	return &Node{
		Kind:  NodeCondition,
		Field: field,
		Op:    op,
		Value: value,
		Type:  ft,
	}
}

// Group constructs a composite node over the given children.
func Group(logic types.Logic, children ...*Node) *Node {
	return &Node{
		Kind:     NodeGroup,
		Logic:    logic,
		Children: children,
	}
}

// Clone deep-copies the subtree rooted at n.
// Slice-valued condition values (IN lists, BETWEEN bounds) are copied so
// mutating a clone's value never aliases the source tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Kind:  n.Kind,
		Field: n.Field,
		Op:    n.Op,
		Value: cloneValue(n.Value),
		Type:  n.Type,
		Logic: n.Logic,
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// CountConditions returns the number of leaf conditions in the subtree.
// Groups themselves do not count.
func (n *Node) CountConditions() int {
	if n == nil {
		return 0
	}
	if n.Kind == NodeCondition {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += c.CountConditions()
	}
	return total
}

// cloneValue copies slice values one level deep. Scalars are immutable
// for our purposes and pass through.
func cloneValue(v any) any {
	switch vv := v.(type) {
	case []any:
		out := make([]any, len(vv))
		copy(out, vv)
		return out
	case []string:
		out := make([]string, len(vv))
		copy(out, vv)
		return out
	case []float64:
		out := make([]float64, len(vv))
		copy(out, vv)
		return out
	case []int:
		out := make([]int, len(vv))
		copy(out, vv)
		return out
	default:
		return v
	}
}
