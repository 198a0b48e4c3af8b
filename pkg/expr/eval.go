package expr

import "math"

const (
	// DivEpsilon is the magnitude below which a denominator counts as zero.
	DivEpsilon = 1e-7
	// DivSentinel is returned by protected division for a zero denominator.
	DivSentinel = 1.0
)

// Eval executes the tree against the given bindings.
func Eval(node ExprNode, b Bindings) float64 {
	switch n := node.(type) {
	case *VarNode:
		return b[n.Index]
	case *ConstNode:
		return n.Val
	case *BinaryNode:
		left := Eval(n.Left, b)
		right := Eval(n.Right, b)
		return Apply(n.Op, left, right)
	default:
		panic("expr: unknown node type")
	}
}

// Apply combines two child results with op.
func Apply(op BinaryOp, left, right float64) float64 {
	switch op {
	case OpAdd:
		return left + right
	case OpSub:
		return left - right
	case OpMul:
		return left * right
	case OpDiv:
		return protectedDiv(left, right)
	default:
		panic("expr: unknown binary op")
	}
}

func protectedDiv(num, den float64) float64 {
	if math.Abs(den) < DivEpsilon {
		return DivSentinel
	}
	return num / den
}
