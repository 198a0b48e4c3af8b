package pool

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
)

// Pool is a node catalog: the terminals and operators that random trees are
// built from.
type Pool interface {
	Name() string
	NumVars() int
	VarNames() []string
	RandomLeaf(rng *rand.Rand) expr.ExprNode
	RandomBinary(rng *rand.Rand) expr.BinaryOp
}

// Spec carries the inputs every catalog is built from.
type Spec struct {
	VarNames []string
	ConstMin float64
	ConstMax float64
}

var (
	ErrNoTerminals   = errors.New("node catalog has no terminals")
	ErrBadConstRange = errors.New("constant range is empty")
)

var registry = map[string]func(Spec) (Pool, error){}

// Register adds a pool constructor to the registry.
func Register(name string, constructor func(Spec) (Pool, error)) {
	registry[name] = constructor
}

// Get builds the named pool for the given spec.
func Get(name string, spec Spec) (Pool, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown pool: %s", name)
	}
	p, err := ctor(spec)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", name, err)
	}
	return p, nil
}

// Names returns all registered pool names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// terminals is the leaf half of a catalog shared by the registered pools.
// Every variable and the constant generator count as one terminal kind each,
// and a leaf is drawn uniformly across kinds.
type terminals struct {
	names     []string
	constants bool
	constMin  float64
	constMax  float64
}

func newTerminals(spec Spec, constants bool) (terminals, error) {
	t := terminals{
		names:     append([]string(nil), spec.VarNames...),
		constants: constants,
		constMin:  spec.ConstMin,
		constMax:  spec.ConstMax,
	}
	if constants && spec.ConstMin > spec.ConstMax {
		return t, fmt.Errorf("%w: [%g, %g]", ErrBadConstRange, spec.ConstMin, spec.ConstMax)
	}
	if t.kinds() == 0 {
		return t, ErrNoTerminals
	}
	return t, nil
}

func (t terminals) kinds() int {
	n := len(t.names)
	if t.constants {
		n++
	}
	return n
}

func (t terminals) NumVars() int      { return len(t.names) }
func (t terminals) VarNames() []string { return t.names }

func (t terminals) RandomLeaf(rng *rand.Rand) expr.ExprNode {
	k := rng.Intn(t.kinds())
	if k < len(t.names) {
		return &expr.VarNode{Index: k}
	}
	return &expr.ConstNode{Val: t.constMin + rng.Float64()*(t.constMax-t.constMin)}
}
