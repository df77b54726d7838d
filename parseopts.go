package formula

import (
	"io"

	"github.com/sirupsen/logrus"
)

// CompileOption is an option for compiling formulas.
type CompileOption interface {
	compileOption(*compilecfg)
}

type compilecfg struct {
	grouping Grouping
}

func (g Grouping) compileOption(c *compilecfg) {
	c.grouping = g
}

func compileConfig(opts []CompileOption) compilecfg {
	var c compilecfg
	for _, opt := range opts {
		if opt != nil {
			opt.compileOption(&c)
		}
	}
	return c
}

// Option is an option used when creating an interpreter.
type Option interface {
	option(*Interpreter)
}

type (
	cacheopt   struct{ c *FormulaCache }
	globalsopt struct{ g *Globals }
	randopt    struct{ r *Rand }
	logopt     struct{ l logrus.FieldLogger }
	varsopt    map[string]float64
)

func (g Grouping) option(in *Interpreter) { in.grouping = g }
func (o cacheopt) option(in *Interpreter) { in.cache = o.c }
func (o globalsopt) option(in *Interpreter) {
	in.globals = o.g
}
func (o randopt) option(in *Interpreter) { in.rand = o.r }
func (o logopt) option(in *Interpreter)  { in.log = o.l }
func (o varsopt) option(in *Interpreter) {
	for k, v := range o {
		in.vars[trimVarPrefix(k)] = v
	}
}

// WithCache sets the cache of compiled formulas. The default is the
// process-wide cache shared by every interpreter.
func WithCache(c *FormulaCache) Option {
	return cacheopt{c}
}

// WithGlobals sets the global variables. The default is the process-wide
// set used by SetGlobalVar.
func WithGlobals(g *Globals) Option {
	return globalsopt{g}
}

// WithRand sets the random source for rand and dice. The default is a
// process-wide source seeded from the clock.
func WithRand(r *Rand) Option {
	return randopt{r}
}

// WithLogger sets a logger for compilation events. The default discards
// everything.
func WithLogger(l logrus.FieldLogger) Option {
	return logopt{l}
}

// WithVars sets initial local variables.
func WithVars(vars map[string]float64) Option {
	return varsopt(vars)
}

// discard is the logger used when none is given.
var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()
