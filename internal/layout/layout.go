// Package layout holds the ordered memory layout the code generator's
// first pass builds: every constant, global, property, object, and
// routine a compilation will emit, in the order code generation pass 2
// walks them. Pooled string literals live in the generator's string pool;
// the Strings field is not filled by the generator.
package layout

import "github.com/davetcode/zilc/internal/ast"

// Memory is the flat, ordered view of one compilation unit that the
// generator's emission pass reads from, mirroring a loaded story file's
// own flat, ordered header-derived view of its memory regions.
type Memory struct {
	Constants  []NamedValue
	Globals    []NamedValue
	Properties []NamedValue
	Objects    []*ast.Object
	Routines   []*ast.Routine
	Strings    []string
	Directions []string
}

// NamedValue pairs a declared name with its (already reduced, where
// applicable) expression.
type NamedValue struct {
	Name  string
	Value *ast.Expr
}

// New returns an empty Memory ready for the code generator's layout pass
// to populate.
func New() *Memory {
	return &Memory{}
}

func (m *Memory) AddConstant(name string, v *ast.Expr) { m.Constants = append(m.Constants, NamedValue{name, v}) }
func (m *Memory) AddGlobal(name string, v *ast.Expr)    { m.Globals = append(m.Globals, NamedValue{name, v}) }
func (m *Memory) AddProperty(name string, v *ast.Expr)  { m.Properties = append(m.Properties, NamedValue{name, v}) }
func (m *Memory) AddObject(o *ast.Object)               { m.Objects = append(m.Objects, o) }
func (m *Memory) AddRoutine(r *ast.Routine)              { m.Routines = append(m.Routines, r) }

// HasProperty reports whether name was already registered, so the
// builder can avoid duplicate `.PROPERTY` directives for names seen
// both in a PROPDEF and inside an OBJECT's property list.
func (m *Memory) HasProperty(name string) bool {
	for _, p := range m.Properties {
		if p.Name == name {
			return true
		}
	}
	return false
}

// HasGlobal reports whether name was already registered.
func (m *Memory) HasGlobal(name string) bool {
	for _, g := range m.Globals {
		if g.Name == name {
			return true
		}
	}
	return false
}
