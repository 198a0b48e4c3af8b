package pool

import (
	"math/rand"

	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
)

// growLeafProb biases grow construction toward leaves once the minimum depth
// is met, keeping trees small.
const growLeafProb = 0.4

// Grow builds a random tree of depth at most maxDepth. Once the remaining
// budget is a single level only terminals are eligible.
func Grow(p Pool, rng *rand.Rand, maxDepth int) expr.ExprNode {
	return grow(p, rng, 1, maxDepth)
}

// GrowMin is Grow with a lower bound: operators are forced above minDepth.
func GrowMin(p Pool, rng *rand.Rand, minDepth, maxDepth int) expr.ExprNode {
	return grow(p, rng, minDepth, maxDepth)
}

func grow(p Pool, rng *rand.Rand, minDepth, maxDepth int) expr.ExprNode {
	if maxDepth <= 1 {
		return p.RandomLeaf(rng)
	}
	if minDepth <= 1 && rng.Float64() < growLeafProb {
		return p.RandomLeaf(rng)
	}
	return &expr.BinaryNode{
		Op:    p.RandomBinary(rng),
		Left:  grow(p, rng, minDepth-1, maxDepth-1),
		Right: grow(p, rng, minDepth-1, maxDepth-1),
	}
}

// Full builds a tree whose every leaf sits exactly at depth.
func Full(p Pool, rng *rand.Rand, depth int) expr.ExprNode {
	if depth <= 1 {
		return p.RandomLeaf(rng)
	}
	return &expr.BinaryNode{
		Op:    p.RandomBinary(rng),
		Left:  Full(p, rng, depth-1),
		Right: Full(p, rng, depth-1),
	}
}

// Ramped returns the i-th tree of a ramped half-and-half sequence: target
// depths cycle through [minDepth, maxDepth] and each full sweep alternates
// between grow and full construction.
func Ramped(p Pool, rng *rand.Rand, minDepth, maxDepth, i int) expr.ExprNode {
	if minDepth < 1 {
		minDepth = 1
	}
	if maxDepth < minDepth {
		maxDepth = minDepth
	}
	span := maxDepth - minDepth + 1
	depth := minDepth + i%span
	if (i/span)%2 == 0 {
		return GrowMin(p, rng, minDepth, depth)
	}
	return Full(p, rng, depth)
}
