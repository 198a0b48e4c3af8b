package expr

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("expression syntax error")

// Parse reads an expression in the form produced by Format. Variables are
// matched against names (longest name first, so names may contain spaces);
// the generic x<i> form is accepted for any index below len(names).
func Parse(text string, names []string) (ExprNode, error) {
	p := &parser{src: text, names: names}
	p.order = make([]int, len(names))
	for i := range p.order {
		p.order[i] = i
	}
	sort.SliceStable(p.order, func(a, b int) bool {
		return len(names[p.order[a]]) > len(names[p.order[b]])
	})

	node, err := p.operand()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input %q", p.src[p.pos:])
	}
	return node, nil
}

type parser struct {
	src   string
	pos   int
	names []string
	order []int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) operand() (ExprNode, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	if p.src[p.pos] == '(' {
		return p.binary()
	}
	rest := p.src[p.pos:]
	for _, i := range p.order {
		name := p.names[i]
		if name != "" && strings.HasPrefix(rest, name) && p.boundary(len(name)) {
			p.pos += len(name)
			return &VarNode{Index: i}, nil
		}
	}
	if v, ok := p.generic(); ok {
		return v, nil
	}
	return p.number()
}

// boundary reports whether a token of length n starting at pos ends at a
// delimiter.
func (p *parser) boundary(n int) bool {
	end := p.pos + n
	return end == len(p.src) || p.src[end] == ' ' || p.src[end] == ')'
}

func (p *parser) generic() (ExprNode, bool) {
	rest := p.src[p.pos:]
	if !strings.HasPrefix(rest, "x") {
		return nil, false
	}
	end := 1
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 1 || !p.boundary(end) {
		return nil, false
	}
	idx, err := strconv.Atoi(rest[1:end])
	if err != nil || idx >= len(p.names) {
		return nil, false
	}
	p.pos += end
	return &VarNode{Index: idx}, true
}

func (p *parser) number() (ExprNode, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != ' ' && p.src[p.pos] != ')' {
		p.pos++
	}
	tok := p.src[start:p.pos]
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("unknown operand %q", tok)
	}
	return &ConstNode{Val: v}, nil
}

func (p *parser) binary() (ExprNode, error) {
	p.pos++ // '('
	left, err := p.operand()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errorf("missing operator")
	}
	var op BinaryOp
	found := false
	for _, candidate := range Ops {
		if p.src[p.pos] == binaryOpSymbols[candidate][0] {
			op, found = candidate, true
			break
		}
	}
	if !found {
		return nil, p.errorf("unknown operator %q", p.src[p.pos])
	}
	p.pos++
	right, err := p.operand()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != ')' {
		return nil, p.errorf("missing closing parenthesis")
	}
	p.pos++
	return &BinaryNode{Op: op, Left: left, Right: right}, nil
}
