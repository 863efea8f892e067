package symtab

import (
	"testing"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/token"
)

func l(line int) token.Location { return token.Location{File: "t.zil", Line: line} }

func atom(name string, line int) *ast.Expr { return ast.Atom(name, l(line)) }

func call(line int, head string, args ...*ast.Expr) *ast.Expr {
	children := append([]*ast.Expr{atom(head, line)}, args...)
	return &ast.Expr{Kind: ast.ExprList, Angle: true, Location: l(line), Children: children}
}

func routineDecl(name string, params []string, body ...*ast.Expr) *ast.Decl {
	return &ast.Decl{Kind: ast.DeclRoutine, Location: l(1), Routine: &ast.Routine{Name: name, Parameters: params, Body: body}}
}

func TestAnalyzeUndefinedRoutineCall(t *testing.T) {
	a := NewAnalyzer()
	decls := []*ast.Decl{
		routineDecl("GO", nil, call(2, "NOPE")),
	}
	a.Analyze(decls)
	found := false
	for _, d := range a.Diagnostics.All() {
		if d.Code == "undefinedSymbol" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected undefinedSymbol for call to NOPE")
	}
}

func TestAnalyzeArityMismatch(t *testing.T) {
	a := NewAnalyzer()
	decls := []*ast.Decl{
		routineDecl("HELPER", []string{"X"}),
		routineDecl("GO", nil, call(3, "HELPER")),
	}
	a.Analyze(decls)
	found := false
	for _, d := range a.Diagnostics.All() {
		if d.Code == "parameterCountMismatch" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected parameterCountMismatch calling HELPER with 0 args")
	}
}

func TestAnalyzeForwardReferenceResolves(t *testing.T) {
	a := NewAnalyzer()
	decls := []*ast.Decl{
		routineDecl("GO", nil, call(2, "LATER")),
		routineDecl("LATER", nil),
	}
	a.Analyze(decls)
	for _, d := range a.Diagnostics.All() {
		if d.Code == "undefinedSymbol" {
			t.Fatalf("forward reference to LATER should resolve, got %v", d)
		}
	}
}

func TestAnalyzeCircularDependency(t *testing.T) {
	a := NewAnalyzer()
	decls := []*ast.Decl{
		routineDecl("A", nil, call(1, "B")),
		routineDecl("B", nil, call(2, "A")),
	}
	a.Analyze(decls)
	found := false
	for _, d := range a.Diagnostics.All() {
		if d.Code == "circularDependency" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected circularDependency between A and B")
	}
}

func TestAnalyzeBuiltinCallsNeedNoDeclaration(t *testing.T) {
	a := NewAnalyzer()
	decls := []*ast.Decl{
		routineDecl("GO", nil, call(2, "ADD", &ast.Expr{Kind: ast.ExprNumber, Number: 1}, &ast.Expr{Kind: ast.ExprNumber, Number: 2})),
	}
	a.Analyze(decls)
	for _, d := range a.Diagnostics.All() {
		if d.Code == "undefinedSymbol" || d.Code == "parameterCountMismatch" {
			t.Fatalf("builtin ADD call should not produce diagnostics: %v", d)
		}
	}
}

func TestAnalyzeRedefinition(t *testing.T) {
	a := NewAnalyzer()
	decls := []*ast.Decl{
		routineDecl("GO", nil),
		routineDecl("GO", nil),
	}
	a.Analyze(decls)
	found := false
	for _, d := range a.Diagnostics.All() {
		if d.Code == "symbolRedefinition" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected symbolRedefinition for duplicate GO routine")
	}
}
