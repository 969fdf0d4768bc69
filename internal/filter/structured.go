// internal/filter/structured.go
package filter

/*
 * Structured backend.
 *
 * Renders a tree to a nested AND/OR object suitable for merging into an
 * ORM-style query engine's filter argument. Empty results are filtered
 * before single-survivor collapsing, so a deeply nested but ultimately
 * empty subtree vanishes cleanly upward instead of leaving hollow
 * logic keys behind.
 */

// CompileStructured renders the tree rooted at root to a structured
// filter object. Returns nil for an empty or fully-invalid tree.
func CompileStructured(reg *Registry, cfg Config, root *Node) map[string]any {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return renderStructured(reg, cfg, root)
}

func renderStructured(reg *Registry, cfg Config, n *Node) map[string]any {
	if n == nil {
		return nil
	}
	if n.Kind == NodeCondition {
		if validateCondition(reg, cfg, n) != nil {
			return nil
		}
		def, _ := reg.Lookup(n.Op)
		return def.Structured(n.Field, n.Value, cfg.resolveType(n))
	}

	survivors := make([]any, 0, len(n.Children))
	var last map[string]any
	for _, child := range n.Children {
		rendered := renderStructured(reg, cfg, child)
		if len(rendered) == 0 {
			continue
		}
		survivors = append(survivors, rendered)
		last = rendered
	}

	switch len(survivors) {
	case 0:
		return nil
	case 1:
		// Collapse: a single survivor needs no logic key.
		return last
	default:
		return map[string]any{n.Logic.String(): survivors}
	}
}
