package expr

// ExprNode is the interface for all expression tree nodes.
//
// The set of node kinds is closed: VarNode, ConstNode and BinaryNode. Every
// node produces a float64, so a tree is well typed as soon as every binary
// node has both children and every variable index names a bound slot.
type ExprNode interface {
	String() string
	Clone() ExprNode
	NodeCount() int
	Depth() int

	isExpr()
}

// BinaryOp identifies a binary operation.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
)

// Ops lists every binary operation in declaration order.
var Ops = []BinaryOp{OpAdd, OpSub, OpMul, OpDiv}

// VarNode reads one of the bound attribute slots.
type VarNode struct {
	Index int
}

// ConstNode represents an ephemeral random constant. Its value is fixed once
// the node is created.
type ConstNode struct {
	Val float64
}

// BinaryNode applies a binary operation to two child expressions.
type BinaryNode struct {
	Op          BinaryOp
	Left, Right ExprNode
}

func (*VarNode) isExpr()    {}
func (*ConstNode) isExpr()  {}
func (*BinaryNode) isExpr() {}

// Bindings holds the current value of every variable slot. A single Bindings
// value is shared by the whole tree during one execution and overwritten
// before the next one.
type Bindings []float64
