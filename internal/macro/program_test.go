package macro

import (
	"testing"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/token"
)

func loc() token.Location { return token.Location{File: "t.zil", Line: 1} }

func call(head string, args ...*ast.Expr) *ast.Expr {
	children := append([]*ast.Expr{ast.Atom(head, loc())}, args...)
	return &ast.Expr{Kind: ast.ExprList, Location: loc(), Children: children}
}

func num(n int16) *ast.Expr { return &ast.Expr{Kind: ast.ExprNumber, Number: n} }

func TestExpandProgramRegistersMacrosAndExpandsCalls(t *testing.T) {
	defmac := &ast.Decl{
		Kind:     ast.DeclDefmac,
		Location: loc(),
		Defmac: &ast.Defmac{
			Name:   "DOUBLE",
			Params: []ast.MacroParameter{{Kind: ast.ParamStandard, Name: "X"}},
			Body:   call("+", &ast.Expr{Kind: ast.ExprLocalVariable, Name: "X"}, &ast.Expr{Kind: ast.ExprLocalVariable, Name: "X"}),
		},
	}
	routine := &ast.Decl{
		Kind:     ast.DeclRoutine,
		Location: loc(),
		Routine: &ast.Routine{
			Name: "GO",
			Body: []*ast.Expr{call("DOUBLE", num(5))},
		},
	}

	p := NewProcessor()
	out, err := ExpandProgram([]*ast.Decl{defmac, routine}, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected DEFMAC to be dropped, got %d decls", len(out))
	}
	body := out[0].Routine.Body[0]
	if body.Kind != ast.ExprList || len(body.Children) != 3 {
		t.Fatalf("expected the expanded <+ 5 5> form, got %+v", body)
	}
}

func TestExpandProgramLeavesNonMacroCallsUntouched(t *testing.T) {
	routine := &ast.Decl{
		Kind:     ast.DeclRoutine,
		Location: loc(),
		Routine:  &ast.Routine{Name: "GO", Body: []*ast.Expr{call("TELL", num(1))}},
	}
	p := NewProcessor()
	out, err := ExpandProgram([]*ast.Decl{routine}, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Routine.Body[0].Head().Name != "TELL" {
		t.Fatalf("expected TELL call left alone, got %+v", out[0].Routine.Body[0])
	}
}
