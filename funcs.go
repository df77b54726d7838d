package formula

import (
	"math"
	"sort"
	"strconv"
)

// Arity is the number of operands an operator consumes.
type Arity int8

const (
	// ZeroArity operators are constants or generators such as pi and rand.
	ZeroArity Arity = iota
	// UnaryArity operators take one operand, e.g. sqrt or !.
	UnaryArity
	// BinaryArity operators take two operands, e.g. + or min.
	BinaryArity
)

func (a Arity) String() string {
	switch a {
	case ZeroArity:
		return "zero"
	case UnaryArity:
		return "unary"
	case BinaryArity:
		return "binary"
	default:
		return "Arity(" + strconv.Itoa(int(a)) + ")"
	}
}

// FunctionPrec is the precedence of operators registered without an explicit
// rank. Function-style operators like sqrt and min bind tighter than every
// infix arithmetic operator.
const FunctionPrec = 2

// Operator describes one registered operator symbol.
type Operator struct {
	// Symbol is the text that selects this operator in a formula.
	Symbol string
	// Name is the canonical name shared by every alias of the operator.
	Name string
	// Arity is the number of operands.
	Arity Arity
	// Prec is the precedence rank. Lower binds tighter.
	Prec int
	// RightAssoc groups chains of equal precedence from the right when
	// formulas are compiled with LeftGrouping.
	RightAssoc bool

	nullary func(r *Rand) float64
	unary   func(x float64) float64
	binary  func(r *Rand, x, y float64) float64
}

func (op *Operator) String() string {
	return op.Symbol
}

// Registry maps operator symbols to their descriptors. A Registry is
// immutable once built and safe for concurrent use.
type Registry struct {
	ops map[string]*Operator
}

// Lookup returns the operator registered for symbol.
func (r *Registry) Lookup(symbol string) (*Operator, bool) {
	op, ok := r.ops[symbol]
	return op, ok
}

// Precedence returns the precedence of symbol, or an *OperatorError if the
// symbol is not registered.
func (r *Registry) Precedence(symbol string) (int, error) {
	op, ok := r.ops[symbol]
	if !ok {
		return 0, &OperatorError{Operator: symbol}
	}
	return op.Prec, nil
}

// Symbols returns every registered symbol in sorted order.
func (r *Registry) Symbols() []string {
	s := make([]string, 0, len(r.ops))
	for k := range r.ops {
		s = append(s, k)
	}
	sort.Strings(s)
	return s
}

// Len returns the number of registered symbols.
func (r *Registry) Len() int {
	return len(r.ops)
}

// opdef is one row of the built-in operator table. Every symbol in syms is
// an alias of the same behavior.
type opdef struct {
	syms  []string
	prec  int
	right bool

	nullary func(r *Rand) float64
	unary   func(x float64) float64
	binary  func(r *Rand, x, y float64) float64
}

func newRegistry(defs []opdef) *Registry {
	reg := Registry{ops: make(map[string]*Operator)}
	for _, d := range defs {
		var a Arity
		switch {
		case d.nullary != nil:
			a = ZeroArity
		case d.unary != nil:
			a = UnaryArity
		case d.binary != nil:
			a = BinaryArity
		default:
			panic("formula: operator " + d.syms[0] + " has no behavior")
		}
		for _, sym := range d.syms {
			if _, ok := reg.ops[sym]; ok {
				panic("formula: duplicate operator " + strconv.Quote(sym))
			}
			reg.ops[sym] = &Operator{
				Symbol:     sym,
				Name:       d.syms[0],
				Arity:      a,
				Prec:       d.prec,
				RightAssoc: d.right,
				nullary:    d.nullary,
				unary:      d.unary,
				binary:     d.binary,
			}
		}
	}
	return &reg
}

// Canonical boolean values.
const (
	True  = 1.0
	False = 0.0
)

// epsilon is the smallest positive float64, used for the truthiness and
// equality tests.
const epsilon = math.SmallestNonzeroFloat64

// Bool converts a boolean to its canonical float encoding.
func Bool(b bool) float64 {
	if b {
		return True
	}
	return False
}

// Truthy reports whether x is within epsilon of 1. Values that are neither
// 1 nor 0 are not truthy.
func Truthy(x float64) bool {
	return math.Abs(x-1) < epsilon
}

// arith adapts a function of two reals that needs no randomness.
func arith(f func(x, y float64) float64) func(*Rand, float64, float64) float64 {
	return func(_ *Rand, x, y float64) float64 { return f(x, y) }
}

// bits adapts an operation on 32-bit integers. Operands are truncated.
func bits(f func(x, y int32) int32) func(*Rand, float64, float64) float64 {
	return func(_ *Rand, x, y float64) float64 { return float64(f(int32(x), int32(y))) }
}

func constant(v float64) func(*Rand) float64 {
	return func(*Rand) float64 { return v }
}

var builtinDefs = []opdef{
	// constants and generators
	{syms: []string{"pi"}, prec: 0, nullary: constant(math.Pi)},
	{syms: []string{"true"}, prec: 0, nullary: constant(True)},
	{syms: []string{"false"}, prec: 0, nullary: constant(False)},
	{syms: []string{"rand"}, prec: 0, nullary: func(r *Rand) float64 { return r.Float64() }},

	// unary
	{syms: []string{"±", "sign"}, prec: 1, unary: func(x float64) float64 { return -x }},
	{syms: []string{"!", "not"}, prec: 3, unary: func(x float64) float64 { return Bool(math.Abs(x) < epsilon) }},
	{syms: []string{"sqrt"}, prec: FunctionPrec, unary: math.Sqrt},
	{syms: []string{"cos"}, prec: FunctionPrec, unary: math.Cos},
	{syms: []string{"sin"}, prec: FunctionPrec, unary: math.Sin},
	{syms: []string{"tan"}, prec: FunctionPrec, unary: math.Tan},
	{syms: []string{"acos"}, prec: FunctionPrec, unary: math.Acos},
	{syms: []string{"asin"}, prec: FunctionPrec, unary: math.Asin},
	{syms: []string{"atan"}, prec: FunctionPrec, unary: math.Atan},
	{syms: []string{"cosh"}, prec: FunctionPrec, unary: math.Cosh},
	{syms: []string{"sinh"}, prec: FunctionPrec, unary: math.Sinh},
	{syms: []string{"tanh"}, prec: FunctionPrec, unary: math.Tanh},
	{syms: []string{"deg2rad"}, prec: FunctionPrec, unary: func(x float64) float64 { return x * math.Pi / 180 }},
	{syms: []string{"rad2deg"}, prec: FunctionPrec, unary: func(x float64) float64 { return x * 180 / math.Pi }},
	{syms: []string{"abs"}, prec: FunctionPrec, unary: math.Abs},
	{syms: []string{"round"}, prec: FunctionPrec, unary: math.RoundToEven},
	{syms: []string{"ceil"}, prec: FunctionPrec, unary: math.Ceil},
	{syms: []string{"floor"}, prec: FunctionPrec, unary: math.Floor},
	{syms: []string{"trunc"}, prec: FunctionPrec, unary: math.Trunc},
	{syms: []string{"log"}, prec: FunctionPrec, unary: math.Log},
	{syms: []string{"log10"}, prec: FunctionPrec, unary: math.Log10},
	{syms: []string{"exp", "e"}, prec: FunctionPrec, unary: math.Exp},

	// arithmetic
	{syms: []string{"+", "add"}, prec: 6, binary: arith(func(x, y float64) float64 { return x + y })},
	{syms: []string{"-", "sub"}, prec: 6, binary: arith(func(x, y float64) float64 { return x - y })},
	{syms: []string{"*", "mult"}, prec: 5, binary: arith(func(x, y float64) float64 { return x * y })},
	{syms: []string{"/", "div"}, prec: 5, binary: arith(func(x, y float64) float64 { return x / y })},
	{syms: []string{"%", "mod"}, prec: 5, binary: arith(mod)},
	{syms: []string{"pow", "^"}, prec: FunctionPrec, right: true, binary: arith(math.Pow)},
	{syms: []string{"min"}, prec: FunctionPrec, binary: arith(math.Min)},
	{syms: []string{"max"}, prec: FunctionPrec, binary: arith(math.Max)},
	{syms: []string{"dice", "d", "D"}, prec: FunctionPrec, binary: dice},

	// comparison
	{syms: []string{"<", "lt"}, prec: 8, binary: arith(func(x, y float64) float64 { return Bool(x < y) })},
	{syms: []string{"<=", "lte"}, prec: 8, binary: arith(func(x, y float64) float64 { return Bool(x <= y) })},
	{syms: []string{">", "gt"}, prec: 8, binary: arith(func(x, y float64) float64 { return Bool(x > y) })},
	{syms: []string{">=", "gte"}, prec: 8, binary: arith(func(x, y float64) float64 { return Bool(x >= y) })},
	{syms: []string{"==", "eq"}, prec: 9, binary: arith(func(x, y float64) float64 { return Bool(math.Abs(x-y) < epsilon) })},
	{syms: []string{"!=", "ne"}, prec: 9, binary: arith(func(x, y float64) float64 { return Bool(!(math.Abs(x-y) < epsilon)) })},

	// boolean
	{syms: []string{"&&", "and"}, prec: 13, binary: arith(func(x, y float64) float64 { return Bool(Truthy(x) && Truthy(y)) })},
	{syms: []string{"||", "or"}, prec: 14, binary: arith(func(x, y float64) float64 { return Bool(Truthy(x) || Truthy(y)) })},

	// bitwise
	{syms: []string{"<<"}, prec: 7, binary: bits(func(x, y int32) int32 { return x << (uint32(y) & 31) })},
	{syms: []string{">>"}, prec: 7, binary: bits(func(x, y int32) int32 { return x >> (uint32(y) & 31) })},
	{syms: []string{"&"}, prec: 10, binary: bits(func(x, y int32) int32 { return x & y })},
	{syms: []string{"|"}, prec: 12, binary: bits(func(x, y int32) int32 { return x | y })},
}

// mod is the remainder of x and y truncated to 32-bit integers. A zero
// divisor gives NaN rather than a panic.
func mod(x, y float64) float64 {
	a, b := int32(x), int32(y)
	if b == 0 {
		return math.NaN()
	}
	if b == -1 {
		// MinInt32 % -1 overflows on some platforms.
		return 0
	}
	return float64(a % b)
}

// dice rolls n dice with the given number of sides and sums them.
func dice(r *Rand, n, sides float64) float64 {
	k, s := int(int32(n)), int(int32(sides))
	if s < 1 {
		return 0
	}
	sum := 0
	for i := 0; i < k; i++ {
		sum += r.IntN(s) + 1
	}
	return float64(sum)
}

// builtins is the registry of every built-in operator. It is complete before
// any formula can be compiled.
var builtins = newRegistry(builtinDefs)

// Builtins returns the registry of built-in operators.
func Builtins() *Registry {
	return builtins
}
