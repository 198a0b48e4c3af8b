package expr

// Points are addressed by their preorder index: the root is 0, a binary
// node's left subtree follows it, then its right subtree.

// Nodes returns every node of the tree in preorder.
func Nodes(root ExprNode) []ExprNode {
	var result []ExprNode
	walk(root, 1, func(n ExprNode, _ int) {
		result = append(result, n)
	})
	return result
}

// Depths returns the depth of every node in preorder, counting the root as 1.
func Depths(root ExprNode) []int {
	var result []int
	walk(root, 1, func(_ ExprNode, depth int) {
		result = append(result, depth)
	})
	return result
}

func walk(node ExprNode, depth int, visit func(ExprNode, int)) {
	visit(node, depth)
	if b, ok := node.(*BinaryNode); ok {
		walk(b.Left, depth+1, visit)
		walk(b.Right, depth+1, visit)
	}
}

// At returns the node at preorder index i, or nil when i is out of range.
func At(root ExprNode, i int) ExprNode {
	var found ExprNode
	idx := 0
	walk(root, 1, func(n ExprNode, _ int) {
		if idx == i {
			found = n
		}
		idx++
	})
	return found
}

// Replace returns a fresh tree equal to root with the subtree at preorder
// index i swapped for a copy of sub. Neither root nor sub is modified.
func Replace(root ExprNode, i int, sub ExprNode) ExprNode {
	next := 0
	return replace(root, &next, i, sub)
}

func replace(node ExprNode, next *int, target int, sub ExprNode) ExprNode {
	if *next == target {
		*next += node.NodeCount()
		return sub.Clone()
	}
	*next++
	b, ok := node.(*BinaryNode)
	if !ok {
		return node.Clone()
	}
	left := replace(b.Left, next, target, sub)
	right := replace(b.Right, next, target, sub)
	return &BinaryNode{Op: b.Op, Left: left, Right: right}
}
