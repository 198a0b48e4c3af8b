package strategy

import (
	"math/rand"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
)

// Crossover swaps a random subtree of a with a random subtree of b and
// returns the two offspring. Offspring deeper than MaxCrossoverDepth are
// rejected and new points drawn, up to CrossoverAttempts times; when every
// attempt fails the parents are copied unchanged and ok is false.
func Crossover(a, b *diagnosis.Program, params Params, rng *rand.Rand) (c1, c2 *diagnosis.Program, ok bool) {
	for attempt := 0; attempt < params.CrossoverAttempts; attempt++ {
		i := pickPoint(a.Root, params.FunctionPointBias, rng)
		j := pickPoint(b.Root, params.FunctionPointBias, rng)

		left := expr.Replace(a.Root, i, expr.At(b.Root, j))
		right := expr.Replace(b.Root, j, expr.At(a.Root, i))

		if left.Depth() <= params.MaxCrossoverDepth && right.Depth() <= params.MaxCrossoverDepth {
			return diagnosis.NewProgram(left), diagnosis.NewProgram(right), true
		}
	}
	return a.Clone(), b.Clone(), false
}

// pickPoint returns the preorder index of a crossover point. With
// probability bias an internal node is chosen, otherwise a leaf.
func pickPoint(root expr.ExprNode, bias float64, rng *rand.Rand) int {
	nodes := expr.Nodes(root)
	var internal, leaves []int
	for i, n := range nodes {
		if expr.IsLeaf(n) {
			leaves = append(leaves, i)
		} else {
			internal = append(internal, i)
		}
	}
	if len(internal) > 0 && rng.Float64() < bias {
		return internal[rng.Intn(len(internal))]
	}
	return leaves[rng.Intn(len(leaves))]
}
