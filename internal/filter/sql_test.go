package filter

import (
	"testing"

	"github.com/solatis/sieve/internal/types"
)

func TestCompileText_Groups(t *testing.T) {
	cfg := Config{MaxDepth: types.DefaultMaxNestingDepth}

	tests := []struct {
		name string
		root *Node
		opts TextOptions
		want string
	}{
		{
			name: "empty group renders empty",
			root: Group(types.LogicAnd),
			want: "",
		},
		{
			name: "single survivor unwrapped at the outermost level",
			root: Group(types.LogicAnd,
				Condition("status", OpEq, "active", types.FieldTypeString),
			),
			want: "status = 'active'",
		},
		{
			name: "AND join",
			root: Group(types.LogicAnd,
				Condition("status", OpEq, "active", types.FieldTypeString),
				Condition("amount", OpGt, 100.0, types.FieldTypeNumber),
			),
			want: "status = 'active' AND amount > 100",
		},
		{
			name: "OR join",
			root: Group(types.LogicOr,
				Condition("status", OpEq, "active", types.FieldTypeString),
				Condition("status", OpEq, "pending", types.FieldTypeString),
			),
			want: "status = 'active' OR status = 'pending'",
		},
		{
			name: "nested group parenthesized",
			root: Group(types.LogicAnd,
				Condition("status", OpEq, "active", types.FieldTypeString),
				Group(types.LogicOr,
					Condition("tier", OpEq, "gold", types.FieldTypeString),
					Condition("tier", OpEq, "silver", types.FieldTypeString),
				),
			),
			want: "status = 'active' AND (tier = 'gold' OR tier = 'silver')",
		},
		{
			name: "invalid condition dropped, survivors joined",
			root: Group(types.LogicAnd,
				Condition("name", OpGt, 100.0, types.FieldTypeString),
				Condition("status", OpEq, "active", types.FieldTypeString),
			),
			want: "status = 'active'",
		},
		{
			name: "nested group of only invalid children vanishes",
			root: Group(types.LogicAnd,
				Condition("status", OpEq, "active", types.FieldTypeString),
				Group(types.LogicOr,
					Condition("name", OpGt, 100.0, types.FieldTypeString),
				),
			),
			want: "status = 'active'",
		},
		{
			name: "qualifier applied to every field reference",
			root: Group(types.LogicAnd,
				Condition("status", OpEq, "active", types.FieldTypeString),
				Condition("amount", OpGt, 100.0, types.FieldTypeNumber),
			),
			opts: TextOptions{Qualifier: "orders"},
			want: "orders.status = 'active' AND orders.amount > 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompileText(nil, cfg, tt.root, tt.opts); got != tt.want {
				t.Errorf("CompileText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompileText_DeeplyNestedEmptyVanishes(t *testing.T) {
	root := Group(types.LogicAnd,
		Group(types.LogicOr,
			Group(types.LogicAnd),
		),
	)
	if got := CompileText(nil, Config{MaxDepth: 3}, root, TextOptions{}); got != "" {
		t.Errorf("CompileText() = %q, want empty", got)
	}
}
