package formula_test

import (
	"testing"

	"github.com/zephyrtronium/formula"
)

func FuzzCalculate(f *testing.F) {
	f.Add("x")
	f.Add("sqrt 4+3*4")
	f.Add("1 d 6")
	f.Add("min(1,-2)")
	f.Add("$player.Health / $player.MaxHealth")
	f.Add("1-±1")
	f.Fuzz(func(t *testing.T, s string) {
		in := newInterpreter(formula.WithVars(map[string]float64{"x": 0}))
		in.Calculate(s)
	})
}
