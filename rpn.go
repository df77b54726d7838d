package formula

import (
	"strconv"
	"strings"
)

// Grouping selects how chains of operators with equal precedence group.
// A Grouping is both a CompileOption and an Option.
type Grouping int8

const (
	// LeftGrouping groups equal-precedence infix operators from the left, so
	// 10-2-3 is (10-2)-3. Right-associative operators such as ^ group from
	// the right. This is the default.
	LeftGrouping Grouping = iota
	// RightGrouping moves an operator from the stack to the output only when
	// it binds strictly tighter than the incoming one. Chains of equal
	// precedence then group from the right, so 10-2-3 is 10-(2-3). This
	// reproduces the grouping of formulas written for older evaluators.
	RightGrouping
)

func (g Grouping) String() string {
	switch g {
	case LeftGrouping:
		return "left"
	case RightGrouping:
		return "right"
	default:
		return "Grouping(" + strconv.Itoa(int(g)) + ")"
	}
}

// ParseGrouping converts "left" or "right" to a Grouping.
func ParseGrouping(s string) (Grouping, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "":
		return LeftGrouping, true
	case "right":
		return RightGrouping, true
	default:
		return LeftGrouping, false
	}
}

// negation is the operator substituted for - where an operand is expected.
const negation = "±"

// stacked is an entry on the operator stack.
type stacked struct {
	tok lexToken
	// op is nil for an open bracket.
	op *Operator
	// prefix is whether the operator appeared where an operand was expected,
	// i.e. it has no left operand.
	prefix bool
}

// toRPN converts infix tokens to postfix order with the shunting-yard
// algorithm.
func toRPN(toks []lexToken, reg *Registry, g Grouping) ([]lexToken, error) {
	out := make([]lexToken, 0, len(toks))
	stack := make([]stacked, 0, len(toks)/2+1)
	// operand is whether the last token completed an operand.
	operand := false
	for _, tok := range toks {
		switch tok.kind {
		case tokenOpen:
			stack = append(stack, stacked{tok: tok})
			operand = false
			continue
		case tokenClose:
			for {
				if len(stack) == 0 {
					return nil, &BracketError{Col: tok.pos, Right: tok.text}
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.op == nil {
					break
				}
				out = append(out, top.tok)
			}
			operand = true
			continue
		case tokenNum, tokenVar:
			out = append(out, tok)
			operand = true
			continue
		}
		op, ok := reg.Lookup(tok.text)
		if !ok {
			// Unresolved names are variables.
			out = append(out, tok)
			operand = true
			continue
		}
		if op.Arity == ZeroArity {
			out = append(out, tok)
			operand = true
			continue
		}
		prefix := !operand
		if prefix && tok.text == "-" {
			if neg, ok := reg.Lookup(negation); ok {
				op = neg
				tok.text = negation
			}
		}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.op == nil || !pops(top, op, prefix, g) {
				break
			}
			out = append(out, top.tok)
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, stacked{tok: tok, op: op, prefix: prefix})
		operand = false
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].op == nil {
			return nil, &BracketError{Col: stack[i].tok.pos, Left: stack[i].tok.text}
		}
		out = append(out, stack[i].tok)
	}
	return out, nil
}

// pops reports whether the stacked operator top moves to the output before
// the incoming operator op is pushed.
func pops(top stacked, op *Operator, prefix bool, g Grouping) bool {
	if g == RightGrouping {
		return top.op.Prec < op.Prec
	}
	if prefix {
		// An operator with no left operand cannot complete anything on the
		// stack.
		return false
	}
	if top.op.Prec != op.Prec {
		return top.op.Prec < op.Prec
	}
	return !op.RightAssoc && !top.prefix && top.op.Arity == BinaryArity
}

// ToRPN converts a formula to postfix notation with its tokens separated by
// single spaces.
func ToRPN(src string, opts ...CompileOption) (string, error) {
	c := compileConfig(opts)
	rpn, err := toRPN(lex(src, builtins), builtins, c.grouping)
	if err != nil {
		return "", err
	}
	return joinTokens(rpn), nil
}

func joinTokens(toks []lexToken) string {
	var b strings.Builder
	for i, tok := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.text)
	}
	return b.String()
}
