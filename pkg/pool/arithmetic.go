package pool

import (
	"math/rand"

	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
)

func init() {
	Register("arithmetic", func(spec Spec) (Pool, error) {
		t, err := newTerminals(spec, true)
		if err != nil {
			return nil, err
		}
		return &ArithmeticPool{terminals: t}, nil
	})
}

// ArithmeticPool is the full catalog: every variable, one ephemeral random
// constant and all four arithmetic operators.
type ArithmeticPool struct {
	terminals
}

func (p *ArithmeticPool) Name() string { return "arithmetic" }

var arithmeticBinary = []expr.BinaryOp{
	expr.OpAdd,
	expr.OpMul,
	expr.OpDiv,
	expr.OpSub,
}

func (p *ArithmeticPool) RandomBinary(rng *rand.Rand) expr.BinaryOp {
	return arithmeticBinary[rng.Intn(len(arithmeticBinary))]
}
