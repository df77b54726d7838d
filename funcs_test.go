package formula

import (
	"errors"
	"math"
	"testing"
)

func TestRegistryLookup(t *testing.T) {
	cases := []struct {
		sym   string
		name  string
		arity Arity
		prec  int
	}{
		{"pi", "pi", ZeroArity, 0},
		{"rand", "rand", ZeroArity, 0},
		{"true", "true", ZeroArity, 0},
		{"±", "±", UnaryArity, 1},
		{"sign", "±", UnaryArity, 1},
		{"!", "!", UnaryArity, 3},
		{"not", "!", UnaryArity, 3},
		{"sqrt", "sqrt", UnaryArity, 2},
		{"e", "exp", UnaryArity, 2},
		{"+", "+", BinaryArity, 6},
		{"add", "+", BinaryArity, 6},
		{"-", "-", BinaryArity, 6},
		{"*", "*", BinaryArity, 5},
		{"/", "/", BinaryArity, 5},
		{"%", "%", BinaryArity, 5},
		{"^", "pow", BinaryArity, 2},
		{"min", "min", BinaryArity, 2},
		{"D", "dice", BinaryArity, 2},
		{"d", "dice", BinaryArity, 2},
		{"<<", "<<", BinaryArity, 7},
		{"<", "<", BinaryArity, 8},
		{"gte", ">=", BinaryArity, 8},
		{"==", "==", BinaryArity, 9},
		{"ne", "!=", BinaryArity, 9},
		{"&", "&", BinaryArity, 10},
		{"|", "|", BinaryArity, 12},
		{"and", "&&", BinaryArity, 13},
		{"||", "||", BinaryArity, 14},
	}
	reg := Builtins()
	for _, c := range cases {
		op, ok := reg.Lookup(c.sym)
		if !ok {
			t.Errorf("%q is not registered", c.sym)
			continue
		}
		if op.Symbol != c.sym || op.Name != c.name || op.Arity != c.arity || op.Prec != c.prec {
			t.Errorf("%q: want name %q arity %v prec %d, got %+v", c.sym, c.name, c.arity, c.prec, op)
		}
		p, err := reg.Precedence(c.sym)
		if err != nil || p != c.prec {
			t.Errorf("%q: want precedence %d, got %d, %v", c.sym, c.prec, p, err)
		}
	}
}

func TestRegistryUnknown(t *testing.T) {
	reg := Builtins()
	for _, sym := range []string{"", "foo", "**", "$x", "Min"} {
		if op, ok := reg.Lookup(sym); ok {
			t.Errorf("%q is registered as %+v", sym, op)
		}
		_, err := reg.Precedence(sym)
		var oe *OperatorError
		if !errors.As(err, &oe) || oe.Operator != sym {
			t.Errorf("%q: want *OperatorError, got %#v", sym, err)
		}
	}
}

func TestRegistrySymbols(t *testing.T) {
	reg := Builtins()
	syms := reg.Symbols()
	if len(syms) != reg.Len() {
		t.Fatalf("%d symbols for %d operators", len(syms), reg.Len())
	}
	for i := 1; i < len(syms); i++ {
		if syms[i-1] >= syms[i] {
			t.Errorf("symbols out of order: %q before %q", syms[i-1], syms[i])
		}
	}
	if _, ok := reg.Lookup("^"); !ok {
		t.Error("^ missing")
	}
	if op, _ := reg.Lookup("^"); !op.RightAssoc {
		t.Error("^ must group from the right")
	}
}

func TestNewRegistryDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate symbols did not panic")
		}
	}()
	newRegistry([]opdef{
		{syms: []string{"x"}, nullary: constant(1)},
		{syms: []string{"y", "x"}, nullary: constant(2)},
	})
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		x    float64
		want bool
	}{
		{1, true},
		{0, false},
		{2, false},
		{-1, false},
		{0.9999999, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}
	for _, c := range cases {
		if got := Truthy(c.x); got != c.want {
			t.Errorf("Truthy(%v): want %t, got %t", c.x, c.want, got)
		}
	}
	if Bool(true) != 1 || Bool(false) != 0 {
		t.Errorf("wrong booleans %v %v", Bool(true), Bool(false))
	}
}

func TestMod(t *testing.T) {
	cases := []struct {
		x, y, want float64
	}{
		{6, 4, 2},
		{-6, 4, -2},
		{6.9, 4.2, 2},
		{math.MinInt32, -1, 0},
		{7, 1, 0},
	}
	for _, c := range cases {
		if got := mod(c.x, c.y); got != c.want {
			t.Errorf("mod(%v, %v): want %v, got %v", c.x, c.y, c.want, got)
		}
	}
	if got := mod(1, 0); !math.IsNaN(got) {
		t.Errorf("mod(1, 0): want NaN, got %v", got)
	}
}

func TestBitwise(t *testing.T) {
	cases := []struct {
		sym  string
		x, y float64
		want float64
	}{
		{"<<", 1, 4, 16},
		{"<<", 1, 33, 2},
		{">>", 16, 4, 1},
		{">>", -16, 2, -4},
		{"&", 6, 3, 2},
		{"|", 6, 3, 7},
		{"&", 6.7, 3.9, 2},
	}
	for _, c := range cases {
		op, _ := builtins.Lookup(c.sym)
		if got := op.binary(nil, c.x, c.y); got != c.want {
			t.Errorf("%v %s %v: want %v, got %v", c.x, c.sym, c.y, c.want, got)
		}
	}
}

func TestDice(t *testing.T) {
	r := NewRand(1)
	for i := 0; i < 1000; i++ {
		v := dice(r, 1, 6)
		if v < 1 || v > 6 || v != math.Trunc(v) {
			t.Fatalf("1 d 6 rolled %v", v)
		}
	}
	for i := 0; i < 100; i++ {
		v := dice(r, 3, 4)
		if v < 3 || v > 12 {
			t.Fatalf("3 d 4 rolled %v", v)
		}
	}
	if v := dice(r, 0, 6); v != 0 {
		t.Errorf("0 d 6 rolled %v", v)
	}
	if v := dice(r, 2, 0); v != 0 {
		t.Errorf("2 d 0 rolled %v", v)
	}
}

func TestDiceDeterministic(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 20; i++ {
		x, y := dice(a, 2, 20), dice(b, 2, 20)
		if x != y {
			t.Fatalf("roll %d differs with equal seeds: %v != %v", i, x, y)
		}
	}
}
