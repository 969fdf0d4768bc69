package filter

import (
	"testing"

	"github.com/solatis/sieve/internal/types"
)

func TestValidate_ConditionChecks(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		node       *Node
		wantReason string
	}{
		{
			name:       "empty field name",
			cfg:        Config{MaxDepth: 3},
			node:       Condition("", OpEq, "x", types.FieldTypeString),
			wantReason: reasonFieldRequired,
		},
		{
			name:       "field outside whitelist",
			cfg:        Config{MaxDepth: 3, AllowedFields: []string{"status"}},
			node:       Condition("secret", OpEq, "x", types.FieldTypeString),
			wantReason: reasonFieldNotListed,
		},
		{
			name:       "unknown operator",
			cfg:        Config{MaxDepth: 3},
			node:       Condition("status", Operator("xor"), "x", types.FieldTypeString),
			wantReason: reasonUnknownOp,
		},
		{
			name:       "operator does not support declared type",
			cfg:        Config{MaxDepth: 3},
			node:       Condition("name", OpGt, 100.0, types.FieldTypeString),
			wantReason: reasonTypeMismatch,
		},
		{
			name:       "array type supported by no operator",
			cfg:        Config{MaxDepth: 3},
			node:       Condition("tags", OpEq, []any{"a"}, types.FieldTypeArray),
			wantReason: reasonTypeMismatch,
		},
		{
			name:       "operator value validator rejects",
			cfg:        Config{MaxDepth: 3},
			node:       Condition("status", OpIn, []any{}, types.FieldTypeString),
			wantReason: reasonInvalidValue,
		},
	}

	reg := DefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCondition(reg, tt.cfg, tt.node)
			if err == nil {
				t.Fatalf("validateCondition() = nil, want reason %q", tt.wantReason)
			}
			if err.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", err.Reason, tt.wantReason)
			}
		})
	}
}

func TestValidate_CheckOrder(t *testing.T) {
	// Whitelist membership is checked before operator/type support:
	// a disallowed field with a bad operator reports the field, not
	// the operator.
	cfg := Config{MaxDepth: 3, AllowedFields: []string{"status"}}
	node := Condition("secret", Operator("xor"), nil, types.FieldTypeString)

	err := validateCondition(DefaultRegistry(), cfg, node)
	if err == nil || err.Reason != reasonFieldNotListed {
		t.Fatalf("validateCondition() = %v, want whitelist failure first", err)
	}
}

func TestValidate_FieldTypeOverride(t *testing.T) {
	// A schema-catalog override makes gt on an inline string condition
	// valid by redeclaring the field as a number.
	cfg := Config{
		MaxDepth:   3,
		FieldTypes: map[string]types.FieldType{"amount": types.FieldTypeNumber},
	}
	node := Condition("amount", OpGt, 100.0, types.FieldTypeString)

	if err := validateCondition(DefaultRegistry(), cfg, node); err != nil {
		t.Errorf("validateCondition() = %v, want nil with override", err)
	}
}

func TestValidate_GroupCollectsLeafErrors(t *testing.T) {
	cfg := Config{MaxDepth: 3}
	root := Group(types.LogicAnd,
		Condition("status", OpEq, "active", types.FieldTypeString),
		Condition("name", OpGt, 100.0, types.FieldTypeString),
		Group(types.LogicOr,
			Condition("amount", OpIn, []any{}, types.FieldTypeNumber),
		),
	)

	errs := Validate(nil, cfg, root)
	if len(errs) != 2 {
		t.Fatalf("Validate() returned %d errors, want 2: %v", len(errs), errs)
	}
	if errs[0].Reason != reasonTypeMismatch {
		t.Errorf("errs[0].Reason = %q, want %q", errs[0].Reason, reasonTypeMismatch)
	}
	if errs[1].Reason != reasonInvalidValue {
		t.Errorf("errs[1].Reason = %q, want %q", errs[1].Reason, reasonInvalidValue)
	}
}

func TestValidate_DepthLimitSyntheticError(t *testing.T) {
	// Depth 4 under a max of 3: one synthetic error for the whole
	// subtree, and no descent into its (also invalid) leaves.
	tooDeep := Group(types.LogicAnd, // depth 4
		Condition("name", OpGt, 100.0, types.FieldTypeString),
		Condition("status", OpIn, []any{}, types.FieldTypeString),
	)
	root := Group(types.LogicAnd,
		Group(types.LogicAnd, // depth 1
			Group(types.LogicAnd, // depth 2
				Group(types.LogicAnd, // depth 3
					tooDeep,
				),
			),
		),
	)

	errs := Validate(nil, Config{MaxDepth: 3}, root)
	if len(errs) != 1 {
		t.Fatalf("Validate() returned %d errors, want exactly 1 synthetic: %v", len(errs), errs)
	}
	if errs[0].Reason != reasonTooDeep {
		t.Errorf("Reason = %q, want %q", errs[0].Reason, reasonTooDeep)
	}
}

func TestValidate_DepthAtLimitAllowed(t *testing.T) {
	root := Group(types.LogicAnd,
		Group(types.LogicAnd, // depth 1
			Group(types.LogicAnd, // depth 2
				Group(types.LogicOr, // depth 3, at the limit
					Condition("status", OpEq, "active", types.FieldTypeString),
				),
			),
		),
	)

	if errs := Validate(nil, Config{MaxDepth: 3}, root); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors at the depth limit", errs)
	}
}

func TestValidate_EmptyGroupIsValid(t *testing.T) {
	if errs := Validate(nil, Config{MaxDepth: 3}, Group(types.LogicAnd)); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors for an empty group", errs)
	}
}
