package pool

import (
	"math/rand"

	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
)

func init() {
	Register("additive", func(spec Spec) (Pool, error) {
		t, err := newTerminals(spec, true)
		if err != nil {
			return nil, err
		}
		return &AdditivePool{terminals: t}, nil
	})
}

// AdditivePool restricts operators to + and -, producing linear
// discriminants over the attributes.
type AdditivePool struct {
	terminals
}

func (p *AdditivePool) Name() string { return "additive" }

var additiveBinary = []expr.BinaryOp{
	expr.OpAdd,
	expr.OpSub,
}

func (p *AdditivePool) RandomBinary(rng *rand.Rand) expr.BinaryOp {
	return additiveBinary[rng.Intn(len(additiveBinary))]
}
