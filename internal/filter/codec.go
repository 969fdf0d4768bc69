// internal/filter/codec.go
package filter

import (
	"encoding/json"
	"fmt"

	"github.com/solatis/sieve/internal/types"
)

/*
 * JSON codec for filter trees.
 *
 * Persisted definitions keep the kind discriminant explicit:
 *
 *   {"kind":"group","logic":"AND","children":[
 *     {"kind":"condition","field":"status","operator":"eq",
 *      "value":"active","type":"string"}]}
 *
 * Decoding is strict about structure (kind, operator name, type name,
 * logic) but not about values; value validity is the registry's job at
 * validation time. Dates round-trip as RFC3339 strings and compare as
 * ISO instants either way.
 */

type conditionJSON struct {
	Kind     string          `json:"kind"`
	Field    string          `json:"field"`
	Operator string          `json:"operator"`
	Value    json.RawMessage `json:"value"`
	Type     string          `json:"type"`
}

type groupJSON struct {
	Kind     string            `json:"kind"`
	Logic    string            `json:"logic"`
	Children []json.RawMessage `json:"children"`
}

// MarshalJSON implements json.Marshaler with an explicit kind tag.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.Kind == NodeGroup {
		children := make([]json.RawMessage, len(n.Children))
		for i, c := range n.Children {
			data, err := json.Marshal(c)
			if err != nil {
				return nil, err
			}
			children[i] = data
		}
		return json.Marshal(groupJSON{
			Kind:     NodeGroup.String(),
			Logic:    n.Logic.String(),
			Children: children,
		})
	}

	value, err := json.Marshal(normalizeValue(n.Value, n.Type))
	if err != nil {
		return nil, err
	}
	return json.Marshal(conditionJSON{
		Kind:     NodeCondition.String(),
		Field:    n.Field,
		Operator: string(n.Op),
		Value:    value,
		Type:     n.Type.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler, dispatching on the kind
// discriminant.
func (n *Node) UnmarshalJSON(data []byte) error {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidDefinition, err)
	}

	switch probe.Kind {
	case NodeGroup.String():
		var g groupJSON
		if err := json.Unmarshal(data, &g); err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidDefinition, err)
		}
		logic, err := types.ParseLogic(g.Logic)
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidDefinition, err)
		}
		children := make([]*Node, len(g.Children))
		for i, raw := range g.Children {
			child := &Node{}
			if err := child.UnmarshalJSON(raw); err != nil {
				return err
			}
			children[i] = child
		}
		*n = Node{Kind: NodeGroup, Logic: logic, Children: children}
		return nil

	case NodeCondition.String():
		var c conditionJSON
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidDefinition, err)
		}
		ft, err := types.ParseFieldType(c.Type)
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidDefinition, err)
		}
		var value any
		if len(c.Value) > 0 {
			if err := json.Unmarshal(c.Value, &value); err != nil {
				return fmt.Errorf("%w: %v", types.ErrInvalidDefinition, err)
			}
		}
		*n = Node{
			Kind:  NodeCondition,
			Field: c.Field,
			Op:    Operator(c.Operator),
			Value: value,
			Type:  ft,
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown node kind %q", types.ErrInvalidDefinition, probe.Kind)
	}
}

// MarshalDefinition encodes a builder's tree for persistence.
func MarshalDefinition(b *Builder) ([]byte, error) {
	return json.Marshal(b.Root())
}

// UnmarshalDefinition decodes a persisted tree.
func UnmarshalDefinition(data []byte) (*Node, error) {
	if len(data) == 0 {
		return nil, types.ErrInvalidDefinition
	}
	n := &Node{}
	if err := n.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return n, nil
}
