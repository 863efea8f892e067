// Package symtab implements the scoped symbol table and semantic
// analyzer: forward references via a pending-reference side table,
// redefinition-as-diagnostic (not fatal), arity checking, and
// cyclic-dependency detection over the call graph.
package symtab

import (
	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/token"
)

// Kind tags the variant carried by a Symbol's Type.
type Kind int

const (
	KindRoutine Kind = iota
	KindObject
	KindGlobalVariable
	KindConstant
	KindLocalVariable
	KindProperty
	KindFlag
	KindMacro
)

// Type carries the fields relevant to a Symbol's Kind; unused fields are
// left zero.
type Type struct {
	Kind Kind

	// KindRoutine
	Params         []string
	OptionalParams []ast.Param
	Auxiliaries    []ast.Param

	// KindObject
	Props []string
	Flags []string

	// KindConstant
	Value *ast.Expr

	// KindProperty
	Default *ast.Expr

	// KindMacro
	MacroParams []ast.MacroParameter
	MacroBody   *ast.Expr
}

// unknownLocation marks built-in symbols, pre-installed with no source
// location; calls to them skip arity validation.
var unknownLocation = token.Location{File: "<builtin>"}

// Symbol is one entry in a SymbolTable scope.
type Symbol struct {
	Name       string
	Type       Type
	ScopeLevel int
	Definition token.Location
	References []token.Location
	IsDefined  bool
}

// IsBuiltin reports whether s was pre-installed rather than user-defined.
func (s *Symbol) IsBuiltin() bool { return s.Definition == unknownLocation }
