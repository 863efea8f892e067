// Package ast defines the ZIL abstract syntax: expressions, declarations,
// routines, objects, and macros. Dynamic dispatch is replaced throughout
// by a Kind field plus selectively-populated struct fields, following the
// tagged-enum-in-struct shape of zmachine/opcode.go's OperandType /
// OpcodeForm / OperandCount fields on a flat Opcode struct.
package ast

import "github.com/davetcode/zilc/internal/token"

// ExprKind tags the variant carried by an Expr.
type ExprKind int

const (
	ExprAtom ExprKind = iota
	ExprNumber
	ExprString
	ExprGlobalVariable
	ExprLocalVariable
	ExprPropertyReference
	ExprFlagReference
	ExprList
	ExprTable
	ExprIndirection
)

// TableKind distinguishes the five ZIL table literal forms.
type TableKind int

const (
	ITABLE TableKind = iota
	LTABLE
	TABLE
	PTABLE
	BTABLE
)

func (k TableKind) String() string {
	return [...]string{"ITABLE", "LTABLE", "TABLE", "PTABLE", "BTABLE"}[k]
}

// Expr is the recursive ZIL expression tree. Only the fields relevant to
// Kind are meaningful; each child Expr is exclusively owned by its parent.
type Expr struct {
	Kind     ExprKind
	Location token.Location

	// ExprAtom, ExprGlobalVariable, ExprLocalVariable, ExprPropertyReference,
	// ExprFlagReference: canonicalized (uppercase) identifier.
	Name string

	// ExprNumber: 16-bit signed value, wraparound semantics already applied.
	Number int16

	// ExprString: literal text with escapes already processed.
	Text string

	// ExprList: children in order, first child is conventionally the
	// operator/head. Angle records whether source used <...> (true) or
	// (...) (false), purely for faithful pretty-printing.
	// ExprTable: children are the table's initializer elements, Kind
	// records which of ITABLE/LTABLE/TABLE/PTABLE/BTABLE this is.
	// ExprIndirection: exactly one child, which must be ExprAtom or
	// ExprGlobalVariable (enforced at parse time, see internal/parser).
	Children  []*Expr
	TableKind TableKind
	Angle     bool
}

// Atom returns a leaf atom expression.
func Atom(name string, loc token.Location) *Expr {
	return &Expr{Kind: ExprAtom, Name: name, Location: loc}
}

// IsAtomNamed reports whether e is an atom whose canonicalized name equals
// name (case-insensitive comparisons are expected to already be upper).
func (e *Expr) IsAtomNamed(name string) bool {
	return e != nil && e.Kind == ExprAtom && e.Name == name
}

// Head returns the list's first child (conventionally the operator), or
// nil if e is not a non-empty list-shaped expression.
func (e *Expr) Head() *Expr {
	if e == nil || (e.Kind != ExprList && e.Kind != ExprTable) || len(e.Children) == 0 {
		return nil
	}
	return e.Children[0]
}

// Args returns the list's children after the head.
func (e *Expr) Args() []*Expr {
	if e == nil || e.Kind != ExprList || len(e.Children) == 0 {
		return nil
	}
	return e.Children[1:]
}

// Clone returns a deep copy of e, used by the macro substitution engine so
// expansions never mutate a macro's stored body.
func (e *Expr) Clone() *Expr {
	if e == nil {
		return nil
	}
	c := *e
	if e.Children != nil {
		c.Children = make([]*Expr, len(e.Children))
		for i, ch := range e.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}
