package pool

import (
	"math/rand"

	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
)

func init() {
	Register("variables", func(spec Spec) (Pool, error) {
		t, err := newTerminals(spec, false)
		if err != nil {
			return nil, err
		}
		return &VariablesPool{terminals: t}, nil
	})
}

// VariablesPool drops the constant generator, so every leaf reads an
// attribute.
type VariablesPool struct {
	terminals
}

func (p *VariablesPool) Name() string { return "variables" }

func (p *VariablesPool) RandomBinary(rng *rand.Rand) expr.BinaryOp {
	return arithmeticBinary[rng.Intn(len(arithmeticBinary))]
}
