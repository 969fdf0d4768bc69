// internal/filter/sql.go
package filter

import (
	"strings"
)

/*
 * Text backend.
 *
 * Renders a tree to a single boolean SQL fragment the caller embeds
 * verbatim into a larger WHERE-style clause. Nothing here executes a
 * query; the output is a value.
 *
 * Rendering rules: conditions that fail validation render to nothing
 * and are dropped; survivors join with " AND " / " OR " per the group's
 * connective; nested groups wrap in parentheses; a group with exactly
 * one survivor contributes that survivor's text unwrapped, so the
 * outermost level carries no redundant parentheses.
 */

// TextOptions control render-time presentation.
type TextOptions struct {
	// Qualifier prefixes every field reference (as "qualifier.field")
	// at render time. It is never stored on the tree.
	Qualifier string
}

// CompileText renders the tree rooted at root to an SQL fragment.
// An empty or fully-invalid tree renders to the empty string.
func CompileText(reg *Registry, cfg Config, root *Node, opts TextOptions) string {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return renderText(reg, cfg, root, opts)
}

func renderText(reg *Registry, cfg Config, n *Node, opts TextOptions) string {
	if n == nil {
		return ""
	}
	if n.Kind == NodeCondition {
		return renderConditionText(reg, cfg, n, opts)
	}

	parts := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		text := renderText(reg, cfg, child, opts)
		if text == "" {
			continue
		}
		if child.Kind == NodeGroup {
			text = "(" + text + ")"
		}
		parts = append(parts, text)
	}

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts, " "+n.Logic.String()+" ")
	}
}

func renderConditionText(reg *Registry, cfg Config, n *Node, opts TextOptions) string {
	if validateCondition(reg, cfg, n) != nil {
		return ""
	}
	def, _ := reg.Lookup(n.Op)
	field := n.Field
	if opts.Qualifier != "" {
		field = opts.Qualifier + "." + field
	}
	return def.Text(field, n.Value, cfg.resolveType(n))
}
