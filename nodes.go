package formula

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// node is a node in the abstract syntax tree of a formula. Nodes are never
// modified after the tree is built, so a tree can be evaluated by many
// interpreters at once.
type node struct {
	kind nodeKind

	// name is the literal text, the variable name without its prefix, or
	// the operator symbol.
	name string
	val  float64
	op   *Operator

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum    // literal val
	nodeVar    // lookup(name)
	nodeConst  // zero-arity op
	nodeUnary  // op(left)
	nodeBinary // op(left, right)
)

func (k nodeKind) String() string {
	switch k {
	case nodeNone:
		return "None"
	case nodeNum:
		return "Num"
	case nodeVar:
		return "Var"
	case nodeConst:
		return "Const"
	case nodeUnary:
		return "Unary"
	case nodeBinary:
		return "Binary"
	default:
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// eval computes the node's value. Recursion depth is the nesting depth of
// the tree.
func (n *node) eval(in *Interpreter) (float64, error) {
	switch n.kind {
	case nodeNum:
		return n.val, nil
	case nodeVar:
		v, ok := in.Lookup(n.name)
		if !ok {
			return 0, &NameError{Name: n.name}
		}
		return v, nil
	case nodeConst:
		return n.op.nullary(in.rand), nil
	case nodeUnary:
		x, err := n.left.eval(in)
		if err != nil {
			return 0, err
		}
		return n.op.unary(x), nil
	case nodeBinary:
		x, err := n.left.eval(in)
		if err != nil {
			return 0, err
		}
		y, err := n.right.eval(in)
		if err != nil {
			return 0, err
		}
		return n.op.binary(in.rand, x, y), nil
	default:
		panic("formula: invalid AST node " + n.kind.String())
	}
}

// vars adds the names of variables used in the tree to names.
func (n *node) vars(names map[string]bool) {
	if n == nil {
		return
	}
	if n.kind == nodeVar {
		names[n.name] = true
	}
	n.left.vars(names)
	n.right.vars(names)
}

// depth returns the height of the tree.
func (n *node) depth() int {
	if n == nil {
		return 0
	}
	l, r := n.left.depth(), n.right.depth()
	if r > l {
		l = r
	}
	return l + 1
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes the tree in fully bracketed infix form. Operators named by
// words are written as calls.
func (n *node) fmt(b *strings.Builder) {
	switch n.kind {
	case nodeNum:
		b.WriteString(n.name)
	case nodeVar:
		b.WriteRune(VarPrefix)
		b.WriteString(n.name)
	case nodeConst:
		b.WriteString(n.name)
	case nodeUnary:
		b.WriteString(n.name)
		b.WriteByte('(')
		n.left.fmt(b)
		b.WriteByte(')')
	case nodeBinary:
		if isWord(n.name) {
			b.WriteString(n.name)
			b.WriteByte('(')
			n.left.fmt(b)
			b.WriteString(", ")
			n.right.fmt(b)
			b.WriteByte(')')
			return
		}
		b.WriteByte('(')
		n.left.fmt(b)
		b.WriteByte(' ')
		b.WriteString(n.name)
		b.WriteByte(' ')
		n.right.fmt(b)
		b.WriteByte(')')
	default:
		panic("formula: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func isWord(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}
