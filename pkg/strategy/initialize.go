package strategy

import (
	"math/rand"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
	"github.com/wildfunctions/genetic_diagnosis/pkg/pool"
)

// Initialize builds popSize random programs with ramped half-and-half depths
// in [MinInitDepth, MaxInitDepth].
//
// Under strict creation a program that duplicates an earlier one, or reads no
// variable at all, is regenerated up to MaxCreationAttempts times; after that
// the last attempt is accepted as is.
func Initialize(p pool.Pool, rng *rand.Rand, params Params, popSize int) []*diagnosis.Program {
	pop := make([]*diagnosis.Program, popSize)
	seen := make(map[string]struct{}, popSize)

	for i := range pop {
		tree := pool.Ramped(p, rng, params.MinInitDepth, params.MaxInitDepth, i)
		if params.StrictCreation {
			for attempt := 1; attempt < params.MaxCreationAttempts && degenerate(tree, p, seen); attempt++ {
				tree = pool.Ramped(p, rng, params.MinInitDepth, params.MaxInitDepth, i)
			}
		}
		seen[tree.String()] = struct{}{}
		pop[i] = diagnosis.NewProgram(tree)
	}
	return pop
}

func degenerate(tree expr.ExprNode, p pool.Pool, seen map[string]struct{}) bool {
	if _, dup := seen[tree.String()]; dup {
		return true
	}
	return p.NumVars() > 0 && !expr.ContainsVar(tree)
}
