package codegen

import (
	"strings"
	"testing"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/token"
)

func loc() token.Location { return token.Location{File: "t.zil", Line: 1} }

func num(n int16) *ast.Expr { return &ast.Expr{Kind: ast.ExprNumber, Number: n} }

func atomE(name string) *ast.Expr { return ast.Atom(name, loc()) }

func listE(head string, args ...*ast.Expr) *ast.Expr {
	children := append([]*ast.Expr{atomE(head)}, args...)
	return &ast.Expr{Kind: ast.ExprList, Angle: true, Location: loc(), Children: children}
}

func TestGenerateEmitsImplicitRtrue(t *testing.T) {
	decls := []*ast.Decl{
		{Kind: ast.DeclRoutine, Location: loc(), Routine: &ast.Routine{Name: "GO", Body: nil}},
	}
	out, err := Generate(decls, Options{Version: 5, OptLevel: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "RTRUE") {
		t.Fatalf("expected an implicit RTRUE in output:\n%s", out)
	}
	if !strings.Contains(out, ".FUNCT\tGO") {
		t.Fatalf("expected a .FUNCT directive for GO:\n%s", out)
	}
}

func TestGenerateArithmeticFold(t *testing.T) {
	decls := []*ast.Decl{
		{Kind: ast.DeclRoutine, Location: loc(), Routine: &ast.Routine{
			Name: "GO",
			Body: []*ast.Expr{listE("RETURN", listE("+", num(1), num(2), num(3)))},
		}},
	}
	out, err := Generate(decls, Options{Version: 5, OptLevel: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, "ADD") != 2 {
		t.Fatalf("expected a left-to-right fold of two ADDs:\n%s", out)
	}
}

func TestGenerateTellEmitsPrinti(t *testing.T) {
	decls := []*ast.Decl{
		{Kind: ast.DeclRoutine, Location: loc(), Routine: &ast.Routine{
			Name: "GO",
			Body: []*ast.Expr{listE("TELL", &ast.Expr{Kind: ast.ExprString, Text: "hi"}, atomE("CR"))},
		}},
	}
	out, err := Generate(decls, Options{Version: 5, OptLevel: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "PRINTI STR0") || !strings.Contains(out, "CRLF") {
		t.Fatalf("expected PRINTI and CRLF in output:\n%s", out)
	}
	if !strings.Contains(out, `.STRING STR0 "hi"`) {
		t.Fatalf("expected the string pool entry to be emitted:\n%s", out)
	}
}

func TestGenerateDebugModeAddsBanners(t *testing.T) {
	decls := []*ast.Decl{
		{Kind: ast.DeclRoutine, Location: loc(), Routine: &ast.Routine{Name: "GO"}},
	}
	out, err := Generate(decls, Options{Version: 5, OptLevel: 0}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "; section: functions") {
		t.Fatalf("expected debug-mode section banners:\n%s", out)
	}
}

func TestGenerateConstantDirective(t *testing.T) {
	decls := []*ast.Decl{
		{Kind: ast.DeclConstant, Location: loc(), Constant: &ast.Constant{Name: "MAX-SCORE", Value: num(350)}},
	}
	out, err := Generate(decls, Options{Version: 5, OptLevel: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, ".CONSTANT MAX-SCORE 350") {
		t.Fatalf("expected a .CONSTANT directive:\n%s", out)
	}
}
