// Package macro implements macro definition/expansion, the FORM dynamic
// list constructor, and the restricted compile-time evaluator. The
// Processor is safe for concurrent use behind a single mutex acquired
// around each define/expand call, matching the discipline used by the
// other long-lived shared components.
package macro

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/token"
)

// Processor stores macro definitions and expands call sites.
type Processor struct {
	mu     chan struct{}
	macros map[string]*ast.Macro
	eval   *Evaluator
}

// NewProcessor returns a Processor seeded with builtins, which can never
// be redefined.
func NewProcessor(builtins ...*ast.Macro) *Processor {
	p := &Processor{mu: make(chan struct{}, 1), macros: map[string]*ast.Macro{}, eval: NewEvaluator(nil)}
	p.mu <- struct{}{}
	for _, b := range builtins {
		b.IsBuiltIn = true
		p.macros[strings.ToUpper(b.Name)] = b
	}
	return p
}

// SetEvaluator installs the Evaluator used to resolve <EVAL ...> forms
// encountered during macro-body substitution. A caller that maintains a
// compile-time constant table (e.g. the semantic analyzer, tracking
// CONSTANT declarations) should call this once that table is available.
func (p *Processor) SetEvaluator(ev *Evaluator) {
	p.lock()
	defer p.unlock()
	p.eval = ev
}

func (p *Processor) lock()   { <-p.mu }
func (p *Processor) unlock() { p.mu <- struct{}{} }

// Define registers a macro. Redefining a built-in is an error.
func (p *Processor) Define(name string, params []ast.MacroParameter, body *ast.Expr, loc token.Location) error {
	p.lock()
	defer p.unlock()
	name = strings.ToUpper(name)
	if existing, ok := p.macros[name]; ok && existing.IsBuiltIn {
		return diag.NewError(diag.SymbolRedefinition, loc, "cannot redefine built-in macro "+name)
	}

	names := lo.Map(params, func(param ast.MacroParameter, _ int) string { return param.Name })
	if len(lo.Uniq(names)) != len(names) {
		return diag.NewError(diag.SymbolRedefinition, loc, "macro "+name+" declares a duplicate parameter name")
	}

	p.macros[name] = &ast.Macro{Name: name, Params: params, Body: body}
	return nil
}

// IsDefined reports whether name is a registered macro.
func (p *Processor) IsDefined(name string) bool {
	p.lock()
	defer p.unlock()
	_, ok := p.macros[strings.ToUpper(name)]
	return ok
}

func (p *Processor) lookup(name string) (*ast.Macro, bool) {
	p.lock()
	defer p.unlock()
	m, ok := p.macros[strings.ToUpper(name)]
	return m, ok
}

// Expand expands a call site `<NAME args...>`. A nested call to a macro
// already on the expansion chain (including NAME calling itself) is left
// unexpanded by substituteList, so recursion terminates without a
// recursiveExpansion error.
func (p *Processor) Expand(name string, args []*ast.Expr, loc token.Location) (*ast.Expr, error) {
	m, ok := p.lookup(name)
	if !ok {
		return nil, diag.NewError(diag.UndefinedMacro, loc, "undefined macro: "+name)
	}
	return p.expandWithStack(m, args, loc, nil)
}

func (p *Processor) expandWithStack(m *ast.Macro, args []*ast.Expr, loc token.Location, stack []string) (*ast.Expr, error) {
	for _, s := range stack {
		if s == m.Name {
			chain := append(append([]string{}, stack...), m.Name)
			return nil, diag.NewError(diag.RecursiveExpansion, loc, "recursive macro expansion: "+strings.Join(chain, " -> ")).WithChain(chain)
		}
	}

	min, max := m.MinArity(), m.MaxArity()
	if len(args) < min || (max >= 0 && len(args) > max) {
		return nil, diag.NewError(diag.ArgumentCountMismatch, loc, macroArityMessage(m.Name, len(args), min, max))
	}

	subst, err := bindParams(m.Params, args)
	if err != nil {
		return nil, err
	}

	newStack := append(append([]string{}, stack...), m.Name)
	body := m.Body.Clone()
	return p.substitute(body, subst, newStack)
}

func macroArityMessage(name string, got, min, max int) string {
	g, mn, mx := strconv.Itoa(got), strconv.Itoa(min), strconv.Itoa(max)
	if max < 0 {
		return "macro " + name + " expects at least " + mn + " arguments, got " + g
	}
	if min == max {
		return "macro " + name + " expects exactly " + mn + " arguments, got " + g
	}
	return "macro " + name + " expects between " + mn + " and " + mx + " arguments, got " + g
}

// bindParams maps each macro parameter name to the argument expression
// substitution should replace it with, following the positional
// consumption rules for Standard/Quoted/Optional/VariableArgs.
func bindParams(params []ast.MacroParameter, args []*ast.Expr) (map[string]*ast.Expr, error) {
	subst := map[string]*ast.Expr{}
	i := 0
	for _, param := range params {
		switch param.Kind {
		case ast.ParamStandard, ast.ParamQuoted:
			if i < len(args) {
				subst[param.Name] = args[i]
				i++
			}
		case ast.ParamOptional:
			if i < len(args) {
				subst[param.Name] = args[i]
				i++
			} else if param.Default != nil {
				subst[param.Name] = param.Default
			}
		case ast.ParamVariableArgs:
			rest := append([]*ast.Expr{}, args[i:]...)
			subst[param.Name] = &ast.Expr{Kind: ast.ExprList, Children: rest}
			i = len(args)
		}
	}
	return subst, nil
}

// substitute walks body, replacing unshadowed Atom/LocalVariable
// references to a bound parameter with its argument, intercepting FORM
// constructor lists, and recursively expanding nested macro calls guarded
// by stack. Lists, tables, and indirections recurse on children; strings,
// numbers, and global variables pass through untouched.
func (p *Processor) substitute(e *ast.Expr, subst map[string]*ast.Expr, stack []string) (*ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Kind {
	case ast.ExprAtom:
		if v, ok := subst[e.Name]; ok {
			return v.Clone(), nil
		}
		return e, nil
	case ast.ExprLocalVariable:
		if v, ok := subst[e.Name]; ok {
			return v.Clone(), nil
		}
		return e, nil
	case ast.ExprNumber, ast.ExprString, ast.ExprGlobalVariable, ast.ExprPropertyReference, ast.ExprFlagReference:
		return e, nil
	case ast.ExprIndirection:
		if len(e.Children) != 1 {
			return e, nil
		}
		target, err := p.substitute(e.Children[0], subst, stack)
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprIndirection, Location: e.Location, Children: []*ast.Expr{target}}, nil
	case ast.ExprTable:
		children, err := p.substituteChildren(e.Children, subst, stack)
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprTable, TableKind: e.TableKind, Location: e.Location, Children: children}, nil
	case ast.ExprList:
		return p.substituteList(e, subst, stack)
	default:
		return e, nil
	}
}

func (p *Processor) substituteChildren(cs []*ast.Expr, subst map[string]*ast.Expr, stack []string) ([]*ast.Expr, error) {
	out := make([]*ast.Expr, len(cs))
	for i, c := range cs {
		s, err := p.substitute(c, subst, stack)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (p *Processor) substituteList(e *ast.Expr, subst map[string]*ast.Expr, stack []string) (*ast.Expr, error) {
	if head := e.Head(); head.IsAtomNamed("EVAL") {
		if len(e.Children) != 2 {
			return nil, diag.NewError(diag.ExpansionError, e.Location, "EVAL requires exactly one expression")
		}
		inner, err := p.substitute(e.Children[1], subst, stack)
		if err != nil {
			return nil, err
		}
		ev := p.eval
		if ev == nil {
			ev = NewEvaluator(nil)
		}
		r := ev.Eval(inner)
		if r.Err != nil {
			return nil, diag.NewError(diag.EvalError, e.Location, r.Err.Error())
		}
		if r.NotEvaluable {
			return &ast.Expr{Kind: ast.ExprList, Angle: e.Angle, Location: e.Location, Children: []*ast.Expr{e.Children[0], inner}}, nil
		}
		return r.Expr, nil
	}

	if head := e.Head(); head.IsAtomNamed("FORM") {
		if len(e.Children) < 2 {
			return nil, diag.NewError(diag.ExpansionError, e.Location, "FORM requires an operation and at least one more element")
		}
		opTarget := e.Children[1]
		if !validFormOp(opTarget) {
			return nil, diag.NewError(diag.ExpansionError, e.Location, "FORM operation must be an atom, local variable, or global variable")
		}
		built := &ast.Expr{Kind: ast.ExprList, Angle: e.Angle, Location: e.Location, Children: append([]*ast.Expr{e.Children[1]}, e.Children[2:]...)}
		children, err := p.substituteChildren(built.Children, subst, stack)
		if err != nil {
			return nil, err
		}
		built.Children = children
		// FORM-constructed lists are themselves re-walked so nested FORMs
		// and macro calls in the result still expand.
		return p.substitute(built, subst, stack)
	}

	children, err := p.substituteChildren(e.Children, subst, stack)
	if err != nil {
		return nil, err
	}
	newList := &ast.Expr{Kind: ast.ExprList, Angle: e.Angle, Location: e.Location, Children: children}

	if headAtom := newList.Head(); headAtom != nil && headAtom.Kind == ast.ExprAtom {
		if m2, ok := p.lookup(headAtom.Name); ok {
			if containsStr(stack, m2.Name) {
				// Re-entry during the recursive tree walk: tolerate
				// mutually referential call graphs by leaving the call
				// unchanged rather than erroring.
				return newList, nil
			}
			return p.expandWithStack(m2, newList.Args(), e.Location, stack)
		}
	}
	return newList, nil
}

func validFormOp(e *ast.Expr) bool {
	return e != nil && (e.Kind == ast.ExprAtom || e.Kind == ast.ExprLocalVariable || e.Kind == ast.ExprGlobalVariable)
}

func containsStr(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
