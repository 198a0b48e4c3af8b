package strategy

import (
	"math/rand"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
	"github.com/wildfunctions/genetic_diagnosis/pkg/pool"
)

// MutationType identifies a kind of mutation.
type MutationType int

const (
	MutPoint        MutationType = iota // replace a node's operator or a leaf
	MutSubtree                          // regrow a random subtree
	MutHoist                            // replace tree with one of its subtrees
	MutConstPerturb                     // nudge a constant value
	MutGrow                             // wrap a leaf in a new operation
	MutShrink                           // replace a node with one of its children
)

const numMutationTypes = 6

// constPerturbScale is the standard deviation of constant nudges.
const constPerturbScale = 0.5

// SubtreeMutate regrows the subtree at a random point with pool.Grow. The
// regrown subtree is limited to MaxInitDepth levels and to whatever keeps the
// whole program within MaxCrossoverDepth.
func SubtreeMutate(prog *diagnosis.Program, p pool.Pool, params Params, rng *rand.Rand) *diagnosis.Program {
	depths := expr.Depths(prog.Root)
	idx := rng.Intn(len(depths))

	budget := params.MaxCrossoverDepth - depths[idx] + 1
	if budget > params.MaxInitDepth {
		budget = params.MaxInitDepth
	}
	if budget < 1 {
		budget = 1
	}
	return diagnosis.NewProgram(expr.Replace(prog.Root, idx, pool.Grow(p, rng, budget)))
}

// Mutate applies the given kind of mutation and returns a new program. A
// result deeper than MaxCrossoverDepth is discarded in favour of a subtree
// mutation.
func Mutate(kind MutationType, prog *diagnosis.Program, p pool.Pool, params Params, rng *rand.Rand) *diagnosis.Program {
	var root expr.ExprNode
	switch kind {
	case MutPoint:
		root = pointMutate(prog.Root, p, rng)
	case MutHoist:
		root = hoistMutate(prog.Root, rng)
	case MutConstPerturb:
		root = constPerturb(prog.Root, rng)
	case MutGrow:
		root = growMutate(prog.Root, p, rng)
	case MutShrink:
		root = shrinkMutate(prog.Root, rng)
	default:
		return SubtreeMutate(prog, p, params, rng)
	}
	if root.Depth() > params.MaxCrossoverDepth {
		return SubtreeMutate(prog, p, params, rng)
	}
	return diagnosis.NewProgram(root)
}

// RandomMutate applies a uniformly chosen kind of mutation.
func RandomMutate(prog *diagnosis.Program, p pool.Pool, params Params, rng *rand.Rand) *diagnosis.Program {
	return Mutate(MutationType(rng.Intn(numMutationTypes)), prog, p, params, rng)
}

// pointMutate replaces a random node's operation (keeping children), or a
// random leaf with a new leaf.
func pointMutate(root expr.ExprNode, p pool.Pool, rng *rand.Rand) expr.ExprNode {
	nodes := expr.Nodes(root)
	idx := rng.Intn(len(nodes))

	switch n := nodes[idx].(type) {
	case *expr.BinaryNode:
		return expr.Replace(root, idx, &expr.BinaryNode{Op: p.RandomBinary(rng), Left: n.Left, Right: n.Right})
	default:
		return expr.Replace(root, idx, p.RandomLeaf(rng))
	}
}

// hoistMutate replaces the tree with one of its subtrees.
func hoistMutate(root expr.ExprNode, rng *rand.Rand) expr.ExprNode {
	nodes := expr.Nodes(root)
	return nodes[rng.Intn(len(nodes))].Clone()
}

// constPerturb adds gaussian noise to a random constant.
func constPerturb(root expr.ExprNode, rng *rand.Rand) expr.ExprNode {
	var consts []int
	for i, n := range expr.Nodes(root) {
		if _, ok := n.(*expr.ConstNode); ok {
			consts = append(consts, i)
		}
	}
	if len(consts) == 0 {
		return root.Clone()
	}
	idx := consts[rng.Intn(len(consts))]
	c := expr.At(root, idx).(*expr.ConstNode)
	return expr.Replace(root, idx, &expr.ConstNode{Val: c.Val + rng.NormFloat64()*constPerturbScale})
}

// growMutate wraps a random leaf in a new binary operation.
func growMutate(root expr.ExprNode, p pool.Pool, rng *rand.Rand) expr.ExprNode {
	var leaves []int
	for i, n := range expr.Nodes(root) {
		if expr.IsLeaf(n) {
			leaves = append(leaves, i)
		}
	}
	idx := leaves[rng.Intn(len(leaves))]
	old := expr.At(root, idx)

	var wrapped expr.ExprNode
	if rng.Float64() < 0.5 {
		wrapped = &expr.BinaryNode{Op: p.RandomBinary(rng), Left: old, Right: p.RandomLeaf(rng)}
	} else {
		wrapped = &expr.BinaryNode{Op: p.RandomBinary(rng), Left: p.RandomLeaf(rng), Right: old}
	}
	return expr.Replace(root, idx, wrapped)
}

// shrinkMutate replaces a non-leaf node with one of its children.
func shrinkMutate(root expr.ExprNode, rng *rand.Rand) expr.ExprNode {
	var internal []int
	for i, n := range expr.Nodes(root) {
		if !expr.IsLeaf(n) {
			internal = append(internal, i)
		}
	}
	if len(internal) == 0 {
		return root.Clone()
	}
	idx := internal[rng.Intn(len(internal))]
	b := expr.At(root, idx).(*expr.BinaryNode)
	if rng.Float64() < 0.5 {
		return expr.Replace(root, idx, b.Left)
	}
	return expr.Replace(root, idx, b.Right)
}
