package formula

import (
	"errors"
	"slices"
	"strconv"
)

// Formula is a compiled formula that can be evaluated by any interpreter. A
// Formula is immutable and safe for concurrent use.
type Formula struct {
	// src is the text the formula was compiled from.
	src string
	// rpn is the postfix token sequence the tree was built from.
	rpn []lexToken
	// n is the root node of the formula.
	n *node
	// names is the sorted list of variable names used in the formula.
	names []string
}

// Compile tokenizes a formula, converts it to postfix order, and builds its
// expression tree. Variables are not resolved until evaluation, so a formula
// that uses an undefined variable compiles successfully.
func Compile(src string, opts ...CompileOption) (*Formula, error) {
	c := compileConfig(opts)
	rpn, err := toRPN(lex(src, builtins), builtins, c.grouping)
	if err != nil {
		return nil, err
	}
	n, err := build(src, rpn, builtins)
	if err != nil {
		return nil, err
	}
	f := Formula{src: src, rpn: rpn, n: n}
	names := make(map[string]bool)
	n.vars(names)
	f.names = make([]string, 0, len(names))
	for k := range names {
		f.names = append(f.names, k)
	}
	slices.Sort(f.names)
	return &f, nil
}

// MustCompile is like Compile but panics if the formula cannot be compiled.
func MustCompile(src string, opts ...CompileOption) *Formula {
	f, err := Compile(src, opts...)
	if err != nil {
		panic("formula: Compile(" + strconv.Quote(src) + "): " + err.Error())
	}
	return f
}

// build turns postfix tokens into an expression tree using a stack of nodes.
// Exactly one node must remain when the tokens are exhausted.
func build(src string, rpn []lexToken, reg *Registry) (*node, error) {
	stack := make([]*node, 0, len(rpn))
	pop := func() *node {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return n
	}
	for _, tok := range rpn {
		op, ok := reg.Lookup(tok.text)
		if !ok || tok.kind == tokenNum || tok.kind == tokenVar {
			stack = append(stack, operand(tok))
			continue
		}
		n := &node{name: tok.text, op: op}
		switch op.Arity {
		case ZeroArity:
			n.kind = nodeConst
		case UnaryArity:
			if len(stack) < 1 {
				return nil, &FormulaError{Formula: src, Col: tok.pos, Operator: tok.text}
			}
			n.kind = nodeUnary
			n.left = pop()
		case BinaryArity:
			if len(stack) < 2 {
				return nil, &FormulaError{Formula: src, Col: tok.pos, Operator: tok.text}
			}
			n.kind = nodeBinary
			n.right = pop()
			n.left = pop()
		}
		stack = append(stack, n)
	}
	if len(stack) != 1 {
		return nil, &FormulaError{Formula: src, Values: len(stack)}
	}
	return stack[0], nil
}

// operand creates a literal if tok parses as a number and a variable
// reference otherwise.
func operand(tok lexToken) *node {
	if tok.kind != tokenVar {
		v, err := strconv.ParseFloat(tok.text, 64)
		if err == nil || errors.Is(err, strconv.ErrRange) {
			return &node{kind: nodeNum, name: tok.text, val: v}
		}
	}
	return &node{kind: nodeVar, name: trimVarPrefix(tok.text)}
}

// Source returns the text the formula was compiled from.
func (f *Formula) Source() string {
	return f.src
}

// RPN returns the formula in postfix notation.
func (f *Formula) RPN() string {
	return joinTokens(f.rpn)
}

// Vars returns the names of variables the formula uses, without prefixes.
func (f *Formula) Vars() []string {
	return append(([]string)(nil), f.names...)
}

// Depth returns the nesting depth of the formula's expression tree.
func (f *Formula) Depth() int {
	return f.n.depth()
}

// String creates a fully bracketed representation of the compiled formula.
func (f *Formula) String() string {
	return f.n.String()
}

// Eval evaluates the formula with the variables and contexts of in.
func (f *Formula) Eval(in *Interpreter) (float64, error) {
	if in.disposed {
		return 0, ErrDisposed
	}
	return f.n.eval(in)
}
