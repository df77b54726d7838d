package formula

import "sync"

// Globals is a set of variables shared by every interpreter that uses it.
// A variable can be set only once; later writes are ignored. Globals is safe
// for concurrent use.
type Globals struct {
	mu   sync.RWMutex
	vars map[string]float64
}

// NewGlobals creates an empty variable set.
func NewGlobals() *Globals {
	return &Globals{vars: make(map[string]float64)}
}

// Set defines name as v unless name is already defined. The variable prefix
// on name is optional. Reports whether the value was stored.
func (g *Globals) Set(name string, v float64) bool {
	name = trimVarPrefix(name)
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.vars[name]; ok {
		return false
	}
	g.vars[name] = v
	return true
}

// Lookup returns the value of a global variable.
func (g *Globals) Lookup(name string) (float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vars[trimVarPrefix(name)]
	return v, ok
}

// Len returns the number of defined variables.
func (g *Globals) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vars)
}

var defaultGlobals = NewGlobals()

// DefaultGlobals returns the process-wide global variables.
func DefaultGlobals() *Globals {
	return defaultGlobals
}

// SetGlobalVar defines a process-wide global variable. The first definition
// of a name wins. Reports whether the value was stored.
func SetGlobalVar(name string, v float64) bool {
	return defaultGlobals.Set(name, v)
}
