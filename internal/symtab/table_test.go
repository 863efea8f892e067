package symtab

import (
	"testing"

	"github.com/davetcode/zilc/internal/token"
)

func loc(line int) token.Location { return token.Location{File: "t.zil", Line: line} }

func TestDefineAndLookup(t *testing.T) {
	tbl := New()
	sym, ok := tbl.Define("FOO", Type{Kind: KindRoutine}, loc(1))
	if !ok || sym == nil {
		t.Fatalf("expected successful define")
	}
	if got, ok := tbl.Lookup("FOO"); !ok || got != sym {
		t.Fatalf("lookup did not find the defined symbol")
	}
}

func TestRedefinitionReturnsFalse(t *testing.T) {
	tbl := New()
	tbl.Define("FOO", Type{Kind: KindGlobalVariable}, loc(1))
	if _, ok := tbl.Define("FOO", Type{Kind: KindGlobalVariable}, loc(2)); ok {
		t.Fatalf("expected redefinition to fail")
	}
}

func TestScopePopHidesLocal(t *testing.T) {
	tbl := New()
	tbl.PushScope()
	tbl.Define("X", Type{Kind: KindLocalVariable}, loc(1))
	if _, ok := tbl.Lookup("X"); !ok {
		t.Fatalf("expected X visible inside scope")
	}
	tbl.PopScope()
	if _, ok := tbl.Lookup("X"); ok {
		t.Fatalf("expected X hidden after scope pop")
	}
}

func TestPopGlobalScopePanics(t *testing.T) {
	tbl := New()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic popping the global scope")
		}
	}()
	tbl.PopScope()
}

func TestForwardReferenceMergesOnDefine(t *testing.T) {
	tbl := New()
	tbl.Reference("FOO", loc(1))
	sym, ok := tbl.Define("FOO", Type{Kind: KindRoutine}, loc(2))
	if !ok {
		t.Fatalf("expected define to succeed")
	}
	if len(sym.References) != 1 {
		t.Fatalf("expected pending reference merged into symbol, got %d", len(sym.References))
	}
}

func TestValidateReportsUndefinedSymbol(t *testing.T) {
	tbl := New()
	tbl.Reference("NOPE", loc(5))
	diags := tbl.Validate()
	if len(diags) != 1 || diags[0].Code != "undefinedSymbol" {
		t.Fatalf("expected one undefinedSymbol diagnostic, got %v", diags)
	}
}

func TestValidateReportsUnusedAfterPop(t *testing.T) {
	tbl := New()
	tbl.PushScope()
	tbl.Define("UNUSED", Type{Kind: KindLocalVariable}, loc(3))
	tbl.PopScope()
	diags := tbl.Validate()
	if len(diags) != 1 || diags[0].Code != "unusedSymbol" {
		t.Fatalf("expected one unusedSymbol diagnostic, got %v", diags)
	}
}

func TestValidateSkipsGlobalScopeForUnused(t *testing.T) {
	tbl := New()
	tbl.Define("GLOB", Type{Kind: KindGlobalVariable}, loc(1))
	if diags := tbl.Validate(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics for an unused global, got %v", diags)
	}
}

func TestBuiltinNeverFlaggedUnused(t *testing.T) {
	tbl := New()
	tbl.PushScope()
	tbl.DefineBuiltin("ADD", Type{Kind: KindRoutine})
	tbl.PopScope()
	for _, d := range tbl.Validate() {
		if d.Code == "unusedSymbol" {
			t.Fatalf("builtin symbol must not be reported unused: %v", d)
		}
	}
}
