package expr

import (
	"fmt"
	"strconv"
	"strings"
)

var binaryOpSymbols = map[BinaryOp]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
}

// String returns the infix symbol of op.
func (op BinaryOp) String() string {
	if s, ok := binaryOpSymbols[op]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// VarName returns the display name of variable i. Without a name list the
// variable prints as x<i>.
func VarName(i int, names []string) string {
	if i >= 0 && i < len(names) && names[i] != "" {
		return names[i]
	}
	return fmt.Sprintf("x%d", i)
}

func formatConst(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Format renders the tree as a fully parenthesised infix expression using the
// given variable names. The output is accepted by Parse.
func Format(node ExprNode, names []string) string {
	var sb strings.Builder
	writeInfix(&sb, node, names)
	return sb.String()
}

func writeInfix(sb *strings.Builder, node ExprNode, names []string) {
	switch n := node.(type) {
	case *VarNode:
		sb.WriteString(VarName(n.Index, names))
	case *ConstNode:
		sb.WriteString(formatConst(n.Val))
	case *BinaryNode:
		sb.WriteByte('(')
		writeInfix(sb, n.Left, names)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		writeInfix(sb, n.Right, names)
		sb.WriteByte(')')
	}
}

// String methods

func (v *VarNode) String() string {
	return VarName(v.Index, nil)
}

func (c *ConstNode) String() string {
	return formatConst(c.Val)
}

func (b *BinaryNode) String() string {
	return Format(b, nil)
}

// LaTeX renders the tree for a math environment.
func LaTeX(node ExprNode, names []string) string {
	switch n := node.(type) {
	case *VarNode:
		return fmt.Sprintf("\\mathit{%s}", latexEscape(VarName(n.Index, names)))
	case *ConstNode:
		return fmt.Sprintf("%.4g", n.Val)
	case *BinaryNode:
		left := LaTeX(n.Left, names)
		right := LaTeX(n.Right, names)
		switch n.Op {
		case OpAdd:
			return fmt.Sprintf("\\left({%s} + {%s}\\right)", left, right)
		case OpSub:
			return fmt.Sprintf("\\left({%s} - {%s}\\right)", left, right)
		case OpMul:
			return fmt.Sprintf("{%s} \\cdot {%s}", left, right)
		case OpDiv:
			return fmt.Sprintf("\\frac{%s}{%s}", left, right)
		}
	}
	return ""
}

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"_", `\_`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"{", `\{`,
	"}", `\}`,
	" ", `\ `,
)

func latexEscape(s string) string {
	return latexReplacer.Replace(s)
}
