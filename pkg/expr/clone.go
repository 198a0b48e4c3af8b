package expr

func (v *VarNode) Clone() ExprNode {
	return &VarNode{Index: v.Index}
}

func (c *ConstNode) Clone() ExprNode {
	return &ConstNode{Val: c.Val}
}

func (b *BinaryNode) Clone() ExprNode {
	return &BinaryNode{
		Op:    b.Op,
		Left:  b.Left.Clone(),
		Right: b.Right.Clone(),
	}
}
