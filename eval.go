package formula

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Context resolves the variables of a named context. A formula reads from a
// context with a dotted reference: $player.Health calls Lookup("Health") on
// the context named player.
type Context interface {
	// Lookup returns the value of name and whether the context knows it.
	Lookup(name string) (float64, bool)
}

// MapContext is a Context backed by a map.
type MapContext map[string]float64

// Lookup returns m[name].
func (m MapContext) Lookup(name string) (float64, bool) {
	v, ok := m[name]
	return v, ok
}

// ContextFunc adapts a function to a Context.
type ContextFunc func(name string) (float64, bool)

// Lookup calls f(name).
func (f ContextFunc) Lookup(name string) (float64, bool) {
	return f(name)
}

// FormulaKey identifies a compiled formula in a FormulaCache.
type FormulaKey struct {
	Source   string
	Grouping Grouping
}

// FormulaCache caches compiled formulas by source text.
type FormulaCache = Cache[FormulaKey, *Formula]

// NewFormulaCache creates a formula cache holding at most capacity formulas.
func NewFormulaCache(capacity int) *FormulaCache {
	return NewCache[FormulaKey, *Formula](capacity)
}

var formulas = NewFormulaCache(DefaultCapacity)

// DefaultCache returns the process-wide formula cache.
func DefaultCache() *FormulaCache {
	return formulas
}

// ClearCache drops every formula in the process-wide cache.
func ClearCache() {
	formulas.Clear()
}

// Interpreter calculates formulas with a set of local variables and named
// contexts. Formulas are compiled once and kept in a cache that is shared
// with other interpreters. It is not safe to use an Interpreter
// concurrently, but many interpreters may run at once.
type Interpreter struct {
	vars     map[string]float64
	ctxs     map[string]Context
	globals  *Globals
	cache    *FormulaCache
	rand     *Rand
	log      logrus.FieldLogger
	grouping Grouping
	disposed bool
}

// New creates an interpreter. With no options, it uses the process-wide
// cache, globals, and random source.
func New(opts ...Option) *Interpreter {
	in := Interpreter{
		vars:    make(map[string]float64),
		ctxs:    make(map[string]Context),
		globals: defaultGlobals,
		cache:   formulas,
		rand:    sharedRand,
		log:     discard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.option(&in)
		}
	}
	return &in
}

// SetVar sets a local variable. The variable prefix on name is optional.
// Returns in for chaining. SetVar on a disposed interpreter does nothing.
func (in *Interpreter) SetVar(name string, v float64) *Interpreter {
	if in.disposed {
		return in
	}
	in.vars[trimVarPrefix(name)] = v
	return in
}

// SetContext registers a named context, replacing any context of the same
// name. A nil ctx removes the context. Returns in for chaining.
func (in *Interpreter) SetContext(name string, ctx Context) *Interpreter {
	if in.disposed {
		return in
	}
	if ctx == nil {
		delete(in.ctxs, name)
		return in
	}
	in.ctxs[name] = ctx
	return in
}

// Lookup resolves a variable name. Local variables are consulted first, then
// named contexts for names of the form context.variable, then globals.
func (in *Interpreter) Lookup(name string) (float64, bool) {
	if in.disposed {
		return 0, false
	}
	name = trimVarPrefix(name)
	if v, ok := in.vars[name]; ok {
		return v, true
	}
	if k := strings.IndexByte(name, '.'); k > 0 && k < len(name)-1 {
		if ctx := in.ctxs[name[:k]]; ctx != nil {
			if v, ok := ctx.Lookup(name[k+1:]); ok {
				return v, true
			}
		}
	}
	return in.globals.Lookup(name)
}

// Compile returns the compiled form of src from the interpreter's cache,
// compiling it on a miss.
func (in *Interpreter) Compile(src string) (*Formula, error) {
	return in.cache.GetOrCompute(FormulaKey{Source: src, Grouping: in.grouping}, in.compile)
}

func (in *Interpreter) compile(k FormulaKey) (*Formula, error) {
	f, err := Compile(k.Source, k.Grouping)
	if err != nil {
		in.log.WithError(err).WithField("formula", k.Source).Debug("formula did not compile")
		return nil, err
	}
	in.log.WithFields(logrus.Fields{
		"formula":  k.Source,
		"rpn":      f.RPN(),
		"grouping": k.Grouping.String(),
	}).Debug("compiled formula")
	return f, nil
}

// Calculate compiles src, using the cache if possible, and evaluates it.
func (in *Interpreter) Calculate(src string) (float64, error) {
	if in.disposed {
		return 0, ErrDisposed
	}
	f, err := in.Compile(src)
	if err != nil {
		return 0, err
	}
	return f.Eval(in)
}

// ClearCache drops every formula in the interpreter's cache.
func (in *Interpreter) ClearCache() {
	in.cache.Clear()
}

// Dispose releases the interpreter's local variables and contexts. Later
// calculations fail with ErrDisposed. Global variables are unaffected.
func (in *Interpreter) Dispose() {
	if in.disposed {
		return
	}
	in.vars = nil
	in.ctxs = nil
	in.disposed = true
}

// ErrDisposed is returned when calculating with a disposed interpreter.
var ErrDisposed = errors.New("formula: interpreter is disposed")

// NameError is an error from a lookup for a variable that is not defined in
// any scope.
type NameError struct {
	// Name is the name that was missing, without its prefix.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(string(VarPrefix)+err.Name)
}
