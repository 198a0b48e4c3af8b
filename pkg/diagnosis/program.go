package diagnosis

import (
	"github.com/wildfunctions/genetic_diagnosis/pkg/expr"
)

// Program is one candidate classifier. Programs are never modified once
// built; genetic operators construct new ones.
type Program struct {
	Root expr.ExprNode
}

// NewProgram wraps root.
func NewProgram(root expr.ExprNode) *Program {
	return &Program{Root: root}
}

// Clone returns a deep copy of the program.
func (p *Program) Clone() *Program {
	return &Program{Root: p.Root.Clone()}
}

// Execute runs the program against the given bindings.
func (p *Program) Execute(b expr.Bindings) float64 {
	return expr.Eval(p.Root, b)
}

// String returns the expression with generic variable names.
func (p *Program) String() string {
	return p.Root.String()
}

// Format returns the expression using the given variable names.
func (p *Program) Format(names []string) string {
	return expr.Format(p.Root, names)
}

// LaTeX returns a LaTeX representation.
func (p *Program) LaTeX(names []string) string {
	return expr.LaTeX(p.Root, names)
}

// Depth returns the depth of the tree.
func (p *Program) Depth() int {
	return p.Root.Depth()
}

// NodeCount returns the number of nodes in the tree.
func (p *Program) NodeCount() int {
	return p.Root.NodeCount()
}

// ParseProgram reads an expression printed by Format.
func ParseProgram(text string, names []string) (*Program, error) {
	root, err := expr.Parse(text, names)
	if err != nil {
		return nil, err
	}
	return NewProgram(root), nil
}
