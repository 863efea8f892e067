package symtab

import "github.com/davetcode/zilc/internal/diag"

// Validate flushes the table's forward-reference bookkeeping into
// diagnostics: every name still pending becomes undefinedSymbol, and
// every non-builtin symbol in a popped or still-open non-global scope
// with zero recorded references becomes unusedSymbol. Call this once,
// after every scope a routine body opened has been popped.
func (t *Table) Validate() []diag.Diagnostic {
	t.lock()
	defer t.unlock()

	var out []diag.Diagnostic
	for name, locs := range t.pending {
		for _, loc := range locs {
			out = append(out, diag.NewError(diag.UndefinedSymbol, loc, "undefined symbol: "+name))
		}
	}

	checkUnused := func(syms []*Symbol) {
		for _, s := range syms {
			if s.IsBuiltin() || len(s.References) > 0 {
				continue
			}
			out = append(out, diag.NewWarning(diag.UnusedSymbol, s.Definition, "unused symbol: "+s.Name))
		}
	}
	for _, snapshot := range t.popped {
		checkUnused(snapshot)
	}
	for i := 1; i < len(t.scopes); i++ {
		vals := make([]*Symbol, 0, len(t.scopes[i]))
		for _, s := range t.scopes[i] {
			vals = append(vals, s)
		}
		checkUnused(vals)
	}
	return out
}
