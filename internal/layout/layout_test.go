package layout

import (
	"testing"

	"github.com/davetcode/zilc/internal/ast"
)

func TestAddConstantPreservesOrder(t *testing.T) {
	m := New()
	m.AddConstant("A", &ast.Expr{Kind: ast.ExprNumber, Number: 1})
	m.AddConstant("B", &ast.Expr{Kind: ast.ExprNumber, Number: 2})
	if len(m.Constants) != 2 || m.Constants[0].Name != "A" || m.Constants[1].Name != "B" {
		t.Fatalf("unexpected order: %+v", m.Constants)
	}
}

func TestHasPropertyAndHasGlobal(t *testing.T) {
	m := New()
	if m.HasProperty("DESC") || m.HasGlobal("SCORE") {
		t.Fatalf("expected a fresh Memory to report no properties or globals")
	}
	m.AddProperty("DESC", nil)
	m.AddGlobal("SCORE", nil)
	if !m.HasProperty("DESC") {
		t.Errorf("expected HasProperty(DESC) to be true after AddProperty")
	}
	if !m.HasGlobal("SCORE") {
		t.Errorf("expected HasGlobal(SCORE) to be true after AddGlobal")
	}
	if m.HasProperty("OTHER") || m.HasGlobal("OTHER") {
		t.Errorf("expected unrelated names to stay unregistered")
	}
}

func TestAddObjectAndRoutineAppend(t *testing.T) {
	m := New()
	m.AddObject(&ast.Object{Name: "ROOM"})
	m.AddRoutine(&ast.Routine{Name: "GO"})
	if len(m.Objects) != 1 || m.Objects[0].Name != "ROOM" {
		t.Fatalf("unexpected objects: %+v", m.Objects)
	}
	if len(m.Routines) != 1 || m.Routines[0].Name != "GO" {
		t.Fatalf("unexpected routines: %+v", m.Routines)
	}
}
