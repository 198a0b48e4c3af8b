package pool

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
)

var testNames = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}

func testSpec() Spec {
	return Spec{VarNames: testNames, ConstMin: -1, ConstMax: 10}
}

func TestArithmeticPool(t *testing.T) {
	p, err := Get("arithmetic", testSpec())
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(42))

	sawConst, sawVar := false, false
	for i := 0; i < 1000; i++ {
		switch leaf := p.RandomLeaf(rng).(type) {
		case *expr.ConstNode:
			sawConst = true
			if leaf.Val < -1 || leaf.Val > 10 {
				t.Fatalf("constant %v outside [-1, 10]", leaf.Val)
			}
		case *expr.VarNode:
			sawVar = true
			if leaf.Index < 0 || leaf.Index >= 9 {
				t.Fatalf("variable index %d out of range", leaf.Index)
			}
		default:
			t.Fatalf("RandomLeaf returned non-terminal %T", leaf)
		}
	}
	if !sawConst || !sawVar {
		t.Errorf("expected both constants and variables, got const=%v var=%v", sawConst, sawVar)
	}
}

func TestVariablesPool(t *testing.T) {
	p, err := Get("variables", testSpec())
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		if _, ok := p.RandomLeaf(rng).(*expr.VarNode); !ok {
			t.Fatal("variables pool produced a non-variable leaf")
		}
	}
}

func TestAdditivePool(t *testing.T) {
	p, err := Get("additive", testSpec())
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		op := p.RandomBinary(rng)
		if op != expr.OpAdd && op != expr.OpSub {
			t.Fatalf("additive pool produced %s", op)
		}
	}
}

func TestGrowAndFullRespectDepth(t *testing.T) {
	p, _ := Get("arithmetic", testSpec())
	rng := rand.New(rand.NewSource(42))

	for depth := 1; depth <= 6; depth++ {
		for i := 0; i < 200; i++ {
			g := Grow(p, rng, depth)
			if err := expr.Validate(g, p.NumVars(), depth); err != nil {
				t.Fatalf("Grow(%d): %v", depth, err)
			}
			f := Full(p, rng, depth)
			if f.Depth() != depth {
				t.Fatalf("Full(%d) depth = %d", depth, f.Depth())
			}
			if f.NodeCount() != 1<<depth-1 {
				t.Fatalf("Full(%d) node count = %d", depth, f.NodeCount())
			}
		}
	}
}

func TestRampedDepthRange(t *testing.T) {
	p, _ := Get("arithmetic", testSpec())
	rng := rand.New(rand.NewSource(1))

	seen := map[int]bool{}
	for i := 0; i < 400; i++ {
		tree := Ramped(p, rng, 2, 4, i)
		d := tree.Depth()
		if d < 2 || d > 4 {
			t.Fatalf("Ramped tree %d has depth %d, want [2,4]", i, d)
		}
		seen[d] = true
	}
	for d := 2; d <= 4; d++ {
		if !seen[d] {
			t.Errorf("no ramped tree of depth %d", d)
		}
	}
}

func TestNoTerminals(t *testing.T) {
	_, err := Get("variables", Spec{})
	if !errors.Is(err, ErrNoTerminals) {
		t.Errorf("expected ErrNoTerminals, got %v", err)
	}

	// Constants alone are enough terminals.
	if _, err := Get("arithmetic", Spec{ConstMin: 0, ConstMax: 1}); err != nil {
		t.Errorf("arithmetic pool without variables: %v", err)
	}
}

func TestBadConstRange(t *testing.T) {
	_, err := Get("arithmetic", Spec{VarNames: testNames, ConstMin: 5, ConstMax: 1})
	if !errors.Is(err, ErrBadConstRange) {
		t.Errorf("expected ErrBadConstRange, got %v", err)
	}
}

func TestPoolRegistry(t *testing.T) {
	names := Names()
	if len(names) < 3 {
		t.Errorf("Expected at least 3 registered pools, got %d", len(names))
	}

	for _, name := range names {
		p, err := Get(name, testSpec())
		if err != nil {
			t.Errorf("Get(%q) failed: %v", name, err)
			continue
		}
		if p.Name() != name {
			t.Errorf("Pool name mismatch: %q vs %q", p.Name(), name)
		}
	}
}

func TestUnknownPool(t *testing.T) {
	_, err := Get("nonexistent", testSpec())
	if err == nil {
		t.Error("Expected error for unknown pool")
	}
}
