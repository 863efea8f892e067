package symtab

import "github.com/davetcode/zilc/internal/token"

type scopeFrame map[string]*Symbol

// Table is a scoped symbol table. Scope 0 is global and is never popped.
// Forward references (a use seen before its definition) are recorded in a
// flat pending side table and merged into the Symbol the moment it is
// defined; anything still pending when Validate runs is undefinedSymbol.
type Table struct {
	mu      chan struct{}
	scopes  []scopeFrame
	popped  [][]*Symbol
	pending map[string][]token.Location
}

// New returns a Table with only the global scope open.
func New() *Table {
	t := &Table{mu: make(chan struct{}, 1), pending: map[string][]token.Location{}}
	t.scopes = []scopeFrame{{}}
	t.mu <- struct{}{}
	return t
}

func (t *Table) lock()   { <-t.mu }
func (t *Table) unlock() { t.mu <- struct{}{} }

// PushScope opens a new nested scope (a routine body's locals).
func (t *Table) PushScope() {
	t.lock()
	defer t.unlock()
	t.scopes = append(t.scopes, scopeFrame{})
}

// PopScope closes the innermost scope. Its contents are snapshotted for
// the unused-symbol check Validate performs later; popping the global
// scope is a programmer error.
func (t *Table) PopScope() {
	t.lock()
	defer t.unlock()
	if len(t.scopes) <= 1 {
		panic("symtab: cannot pop the global scope")
	}
	last := t.scopes[len(t.scopes)-1]
	snapshot := make([]*Symbol, 0, len(last))
	for _, s := range last {
		snapshot = append(snapshot, s)
	}
	t.popped = append(t.popped, snapshot)
	t.scopes = t.scopes[:len(t.scopes)-1]
}

func (t *Table) findLocked(name string) *Symbol {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if s, ok := t.scopes[i][name]; ok {
			return s
		}
	}
	return nil
}

// Define installs name in the innermost scope. It returns false without
// modifying the table if name is already defined in that scope; the
// caller decides whether that is a symbolRedefinition diagnostic.
func (t *Table) Define(name string, typ Type, loc token.Location) (*Symbol, bool) {
	t.lock()
	defer t.unlock()
	frame := t.scopes[len(t.scopes)-1]
	if _, ok := frame[name]; ok {
		return nil, false
	}
	sym := &Symbol{Name: name, Type: typ, ScopeLevel: len(t.scopes) - 1, Definition: loc, IsDefined: true}
	if locs, ok := t.pending[name]; ok {
		sym.References = append(sym.References, locs...)
		delete(t.pending, name)
	}
	frame[name] = sym
	return sym, true
}

// DefineBuiltin installs a pre-resolved, location-less symbol directly
// into the global scope, skipping the pending-reference merge (built-ins
// are always already "defined" when lookups start).
func (t *Table) DefineBuiltin(name string, typ Type) {
	t.lock()
	defer t.unlock()
	t.scopes[0][name] = &Symbol{Name: name, Type: typ, Definition: unknownLocation, IsDefined: true}
}

// Lookup searches from the innermost scope outward.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	t.lock()
	defer t.unlock()
	s := t.findLocked(name)
	return s, s != nil
}

// Reference records a use of name at loc: onto the Symbol if it is
// already visible, otherwise into the pending side table.
func (t *Table) Reference(name string, loc token.Location) {
	t.lock()
	defer t.unlock()
	if s := t.findLocked(name); s != nil {
		s.References = append(s.References, loc)
		return
	}
	t.pending[name] = append(t.pending[name], loc)
}

// ScopeDepth reports how many scopes are currently open (>= 1).
func (t *Table) ScopeDepth() int {
	t.lock()
	defer t.unlock()
	return len(t.scopes)
}
