package filter

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/sieve/internal/types"
)

// buildArbitraryTree assembles a two-level tree from generator scalars:
// width conditions at the root plus one nested group when nested is set.
func buildArbitraryTree(width int, nested bool, logicBit bool) *Node {
	logic := types.LogicAnd
	if logicBit {
		logic = types.LogicOr
	}
	root := Group(logic)
	for i := 0; i < width; i++ {
		field := fmt.Sprintf("f%d", i%5)
		root.Children = append(root.Children,
			Condition(field, OpEq, fmt.Sprintf("v%d", i), types.FieldTypeString))
	}
	if nested {
		root.Children = append(root.Children, Group(types.LogicOr,
			Condition("f0", OpEq, "nested", types.FieldTypeString),
			Condition("f4", OpEq, "nested", types.FieldTypeString),
		))
	}
	return root
}

// Property: repeated optimization with the same indexed set is a no-op
// beyond the first pass and never changes the leaf-condition count.
func TestOptimize_PropertyIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	cfg := Config{MaxDepth: types.DefaultMaxNestingDepth}

	properties.Property("optimize is idempotent and count-preserving", prop.ForAll(
		func(width int, nested bool, logicBit bool, indexFirst bool) bool {
			root := buildArbitraryTree(width, nested, logicBit)
			indexed := []string{"f1", "f3"}
			if indexFirst {
				indexed = []string{"f0"}
			}
			before := root.CountConditions()

			Optimize(root, indexed)
			once := CompileText(nil, cfg, root, TextOptions{})
			Optimize(root, indexed)
			twice := CompileText(nil, cfg, root, TextOptions{})

			return once == twice && root.CountConditions() == before
		},
		gen.IntRange(0, 12),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property: parsing never panics regardless of input.
func TestParse_PropertyNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("parse never panics", prop.ForAll(
		func(input string) (ok bool) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Parse(%q) panicked: %v", input, r)
					ok = false
				}
			}()
			b, err := Parse(input)
			if err == nil && b == nil {
				return false
			}
			if b != nil {
				_ = b.ToSQL()
				_ = b.ToStructured()
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// Property: compilation is deterministic - the same tree renders the
// same text and the same structured shape every time.
func TestCompile_PropertyDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	cfg := Config{MaxDepth: types.DefaultMaxNestingDepth}

	properties.Property("compile output is stable across calls", prop.ForAll(
		func(width int, nested bool, logicBit bool) bool {
			root := buildArbitraryTree(width, nested, logicBit)
			first := CompileText(nil, cfg, root, TextOptions{})
			second := CompileText(nil, cfg, root, TextOptions{})
			return first == second
		},
		gen.IntRange(0, 12),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property: a clone compiles identically at clone time, and mutating
// the clone never changes the source's count.
func TestBuilder_PropertyCloneIsolation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("clone isolates the source tree", prop.ForAll(
		func(width int, extra int) bool {
			src := New()
			for i := 0; i < width; i++ {
				src.Equals(fmt.Sprintf("f%d", i), fmt.Sprintf("v%d", i))
			}
			clone := src.Clone()
			if clone.ToSQL() != src.ToSQL() {
				return false
			}

			for i := 0; i < extra; i++ {
				clone.Equals(fmt.Sprintf("extra%d", i), "x")
			}
			return src.Count() == width && clone.Count() == width+extra
		},
		gen.IntRange(0, 8),
		gen.IntRange(1, 4),
	))

	properties.TestingRun(t)
}
