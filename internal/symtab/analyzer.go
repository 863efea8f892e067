package symtab

import (
	"strings"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/token"
)

// Analyzer runs the collection, validation, and cyclic-dependency passes
// over a parsed and macro-expanded declaration stream, recording
// diagnostics on Diagnostics and populating Table.
type Analyzer struct {
	Table       *Table
	Diagnostics *diag.Collector

	deps     map[string]map[string]bool
	current  string // enclosing routine name, "" at global scope
}

// NewAnalyzer returns an Analyzer with the global scope pre-populated with
// built-in routines and constants.
func NewAnalyzer() *Analyzer {
	t := New()
	installBuiltins(t)
	return &Analyzer{Table: t, Diagnostics: diag.NewCollector(), deps: map[string]map[string]bool{}}
}

// Analyze runs the full pipeline over decls and returns the collector it
// populated (same value as a.Diagnostics, returned for convenience).
func (a *Analyzer) Analyze(decls []*ast.Decl) *diag.Collector {
	a.collect(decls)
	for _, d := range decls {
		a.validateDecl(d)
	}
	a.detectCycles()
	for _, d := range a.Table.Validate() {
		a.Diagnostics.Add(d)
	}
	return a.Diagnostics
}

func (a *Analyzer) redefined(name string, loc token.Location, kind string) {
	a.Diagnostics.Add(diag.NewError(diag.SymbolRedefinition, loc, "redefinition of "+kind+" "+name))
}

// collect installs every top-level name in the global scope before any
// expression is checked, so forward references within and across
// declarations resolve without ordering sensitivity.
func (a *Analyzer) collect(decls []*ast.Decl) {
	for _, d := range decls {
		switch d.Kind {
		case ast.DeclRoutine:
			r := d.Routine
			typ := Type{Kind: KindRoutine, Params: r.Parameters, OptionalParams: r.Optional, Auxiliaries: r.Auxiliaries}
			if _, ok := a.Table.Define(r.Name, typ, d.Location); !ok {
				a.redefined(r.Name, d.Location, "routine")
			}
		case ast.DeclObject:
			o := d.Object
			var props, flags []string
			for _, p := range o.Properties {
				if p.Name == "FLAGS" {
					flags = append(flags, flagNames(p.Value)...)
					continue
				}
				props = append(props, p.Name)
				if _, ok := a.Table.Lookup(p.Name); !ok {
					a.Table.DefineBuiltin(p.Name, Type{Kind: KindProperty})
				}
			}
			for _, f := range flags {
				if _, ok := a.Table.Lookup(f); !ok {
					a.Table.DefineBuiltin(f, Type{Kind: KindFlag})
				}
			}
			if _, ok := a.Table.Define(o.Name, Type{Kind: KindObject, Props: props, Flags: flags}, d.Location); !ok {
				a.redefined(o.Name, d.Location, "object")
			}
		case ast.DeclGlobal:
			g := d.Global
			if _, ok := a.Table.Define(g.Name, Type{Kind: KindGlobalVariable, Value: g.Value}, d.Location); !ok {
				a.redefined(g.Name, d.Location, "global")
			}
		case ast.DeclProperty:
			p := d.Property
			if _, ok := a.Table.Define(p.Name, Type{Kind: KindProperty, Default: p.Default}, d.Location); !ok {
				a.redefined(p.Name, d.Location, "property")
			}
		case ast.DeclConstant:
			c := d.Constant
			if _, ok := a.Table.Define(c.Name, Type{Kind: KindConstant, Value: c.Value}, d.Location); !ok {
				a.redefined(c.Name, d.Location, "constant")
			}
		case ast.DeclDefmac:
			m := d.Defmac
			if _, ok := a.Table.Define(m.Name, Type{Kind: KindMacro, MacroParams: m.Params, MacroBody: m.Body}, d.Location); !ok {
				a.redefined(m.Name, d.Location, "macro")
			}
		case ast.DeclDirections:
			for _, name := range d.Directions.Names {
				propName := "P?" + name
				if _, ok := a.Table.Lookup(propName); !ok {
					a.Table.DefineBuiltin(propName, Type{Kind: KindConstant})
				}
			}
		}
	}
}

// flagNames extracts the atom names listed in a FLAGS property's value.
func flagNames(e *ast.Expr) []string {
	if e == nil {
		return nil
	}
	var names []string
	var list []*ast.Expr
	if e.Kind == ast.ExprList {
		list = e.Children
	} else {
		list = []*ast.Expr{e}
	}
	for _, el := range list {
		if el.Kind == ast.ExprAtom {
			names = append(names, el.Name)
		}
	}
	return names
}

func (a *Analyzer) validateDecl(d *ast.Decl) {
	switch d.Kind {
	case ast.DeclRoutine:
		a.validateRoutine(d.Routine)
	case ast.DeclObject:
		for _, p := range d.Object.Properties {
			a.checkExpr(p.Value)
		}
	case ast.DeclGlobal:
		a.checkExpr(d.Global.Value)
	case ast.DeclConstant:
		a.checkExpr(d.Constant.Value)
	case ast.DeclProperty:
		a.checkExpr(d.Property.Default)
	}
}

func (a *Analyzer) validateRoutine(r *ast.Routine) {
	a.Table.PushScope()
	for _, p := range r.Parameters {
		a.Table.Define(p, Type{Kind: KindLocalVariable}, token.Location{})
	}
	for _, p := range r.Optional {
		a.Table.Define(p.Name, Type{Kind: KindLocalVariable}, token.Location{})
		a.checkExpr(p.Default)
	}
	for _, p := range r.Auxiliaries {
		a.Table.Define(p.Name, Type{Kind: KindLocalVariable}, token.Location{})
		a.checkExpr(p.Default)
	}

	prev := a.current
	a.current = r.Name
	for _, e := range r.Body {
		a.checkExpr(e)
	}
	a.current = prev
	a.Table.PopScope()
}

func (a *Analyzer) addDep(callee string) {
	if a.current == "" {
		return
	}
	if a.deps[a.current] == nil {
		a.deps[a.current] = map[string]bool{}
	}
	a.deps[a.current][callee] = true
}

// checkExpr walks an expression tree, referencing every name it mentions
// and validating routine call arity and property/flag access.
func (a *Analyzer) checkExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ast.ExprAtom:
		a.Table.Reference(e.Name, e.Location)
	case ast.ExprGlobalVariable, ast.ExprLocalVariable:
		a.Table.Reference(e.Name, e.Location)
	case ast.ExprPropertyReference:
		if sym, ok := a.Table.Lookup(e.Name); !ok || sym.Type.Kind != KindProperty {
			a.Diagnostics.Add(diag.NewError(diag.InvalidPropertyAccess, e.Location, "undeclared property: "+e.Name))
		} else {
			a.Table.Reference(e.Name, e.Location)
		}
	case ast.ExprFlagReference:
		if sym, ok := a.Table.Lookup(e.Name); !ok || sym.Type.Kind != KindFlag {
			a.Diagnostics.Add(diag.NewError(diag.InvalidFlagOperation, e.Location, "undeclared flag: "+e.Name))
		} else {
			a.Table.Reference(e.Name, e.Location)
		}
	case ast.ExprIndirection:
		for _, c := range e.Children {
			a.checkExpr(c)
		}
	case ast.ExprTable:
		for _, c := range e.Children {
			a.checkExpr(c)
		}
	case ast.ExprList:
		a.checkList(e)
	}
}

func (a *Analyzer) checkList(e *ast.Expr) {
	head := e.Head()
	for _, arg := range e.Args() {
		a.checkExpr(arg)
	}
	if head == nil {
		return
	}
	if head.Kind != ast.ExprAtom {
		a.checkExpr(head)
		return
	}

	a.Table.Reference(head.Name, head.Location)
	sym, ok := a.Table.Lookup(head.Name)
	if !ok || sym.Type.Kind != KindRoutine {
		return
	}
	if sym.IsBuiltin() {
		return
	}

	args := e.Args()
	required := len(sym.Type.Params)
	optional := len(sym.Type.OptionalParams)
	if len(args) < required || len(args) > required+optional {
		a.Diagnostics.Add(diag.NewError(diag.ParameterCountMismatch, e.Location,
			callArityMessage(head.Name, len(args), required, optional)))
	}
	a.addDep(head.Name)
}

func callArityMessage(name string, got, required, optional int) string {
	max := required + optional
	if required == max {
		return "routine " + name + " expects exactly " + itoa(required) + " arguments, got " + itoa(got)
	}
	return "routine " + name + " expects between " + itoa(required) + " and " + itoa(max) + " arguments, got " + itoa(got)
}

func itoa(n int) string {
	var sb strings.Builder
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	if neg {
		sb.WriteByte('-')
	}
	for i := len(digits) - 1; i >= 0; i-- {
		sb.WriteByte(digits[i])
	}
	return sb.String()
}

// detectCycles runs DFS with path tracking over the call graph built
// during validation, emitting one circularDependency diagnostic per back
// edge discovered (each back edge closes exactly one cycle in the path).
func (a *Analyzer) detectCycles() {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var path []string
	reported := map[string]bool{}

	var visit func(name string)
	visit = func(name string) {
		color[name] = gray
		path = append(path, name)
		for callee := range a.deps[name] {
			switch color[callee] {
			case white:
				visit(callee)
			case gray:
				chain := cycleChain(path, callee)
				sig := strings.Join(chain, ",")
				if !reported[sig] {
					reported[sig] = true
					loc := token.Location{}
					if sym, ok := a.Table.Lookup(name); ok {
						loc = sym.Definition
					}
					a.Diagnostics.Add(diag.NewError(diag.CircularDependency, loc,
						"circular dependency: "+strings.Join(chain, " -> ")).WithChain(chain))
				}
			}
		}
		path = path[:len(path)-1]
		color[name] = black
	}

	for name := range a.deps {
		if color[name] == white {
			visit(name)
		}
	}
}

// cycleChain extracts the portion of path from target's first occurrence
// to the end, plus target again, forming a closed loop for reporting.
func cycleChain(path []string, target string) []string {
	start := 0
	for i, n := range path {
		if n == target {
			start = i
			break
		}
	}
	chain := append([]string{}, path[start:]...)
	chain = append(chain, target)
	return chain
}
