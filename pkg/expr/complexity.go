package expr

import (
	"errors"
	"fmt"
)

func (v *VarNode) NodeCount() int   { return 1 }
func (c *ConstNode) NodeCount() int { return 1 }
func (b *BinaryNode) NodeCount() int {
	return 1 + b.Left.NodeCount() + b.Right.NodeCount()
}

func (v *VarNode) Depth() int   { return 1 }
func (c *ConstNode) Depth() int { return 1 }
func (b *BinaryNode) Depth() int {
	ld := b.Left.Depth()
	rd := b.Right.Depth()
	if ld > rd {
		return 1 + ld
	}
	return 1 + rd
}

// IsLeaf reports whether node is a terminal.
func IsLeaf(node ExprNode) bool {
	_, ok := node.(*BinaryNode)
	return !ok
}

// ContainsVar reports whether the expression tree reads any variable.
func ContainsVar(node ExprNode) bool {
	switch n := node.(type) {
	case *VarNode:
		return true
	case *BinaryNode:
		return ContainsVar(n.Left) || ContainsVar(n.Right)
	default:
		return false
	}
}

// ErrInvalidTree is wrapped by every structural validation failure.
var ErrInvalidTree = errors.New("invalid expression tree")

// Validate checks the structural invariants of a tree: binary nodes carry two
// children, variable indexes fall in [0, numVars), and the depth does not
// exceed maxDepth. A maxDepth <= 0 disables the depth check.
func Validate(node ExprNode, numVars, maxDepth int) error {
	if node == nil {
		return fmt.Errorf("%w: nil root", ErrInvalidTree)
	}
	if err := validate(node, numVars); err != nil {
		return err
	}
	if maxDepth > 0 {
		if d := node.Depth(); d > maxDepth {
			return fmt.Errorf("%w: depth %d exceeds %d", ErrInvalidTree, d, maxDepth)
		}
	}
	return nil
}

func validate(node ExprNode, numVars int) error {
	switch n := node.(type) {
	case *VarNode:
		if n.Index < 0 || n.Index >= numVars {
			return fmt.Errorf("%w: variable index %d out of range [0,%d)", ErrInvalidTree, n.Index, numVars)
		}
		return nil
	case *ConstNode:
		return nil
	case *BinaryNode:
		if n.Left == nil || n.Right == nil {
			return fmt.Errorf("%w: %s node missing operand", ErrInvalidTree, binaryOpSymbols[n.Op])
		}
		if _, ok := binaryOpSymbols[n.Op]; !ok {
			return fmt.Errorf("%w: unknown op %d", ErrInvalidTree, n.Op)
		}
		if err := validate(n.Left, numVars); err != nil {
			return err
		}
		return validate(n.Right, numVars)
	default:
		return fmt.Errorf("%w: unknown node %T", ErrInvalidTree, node)
	}
}
