// internal/filter/optimize.go
package filter

/*
 * Index-aware child reordering.
 *
 * Partitions a group's immediate children into conditions on indexed
 * fields (relative order preserved) followed by everything else:
 * non-indexed conditions and nested groups, each nested group itself
 * optimized first. Logic and semantics are unchanged; only child order
 * moves, so cheap-to-evaluate predicates reach the executor first.
 *
 * The stable partition makes repeated application with the same indexed
 * set a no-op beyond the first pass.
 */

// Optimize reorders the tree rooted at n in place so that conditions on
// indexed fields come before other children in every group. Nil nodes
// and condition roots are left untouched (best-effort, never raises).
func Optimize(n *Node, indexedFields []string) {
	if n == nil || len(indexedFields) == 0 {
		return
	}
	indexed := make(map[string]struct{}, len(indexedFields))
	for _, f := range indexedFields {
		indexed[f] = struct{}{}
	}
	optimizeGroup(n, indexed)
}

func optimizeGroup(n *Node, indexed map[string]struct{}) {
	if n == nil || n.Kind != NodeGroup {
		return
	}

	front := make([]*Node, 0, len(n.Children))
	rest := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		if child.Kind == NodeGroup {
			optimizeGroup(child, indexed)
			rest = append(rest, child)
			continue
		}
		if _, ok := indexed[child.Field]; ok {
			front = append(front, child)
		} else {
			rest = append(rest, child)
		}
	}
	n.Children = append(front, rest...)
}
