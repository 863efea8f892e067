package ast

import "github.com/davetcode/zilc/internal/token"

// DeclKind tags the variant carried by a Decl.
type DeclKind int

const (
	DeclRoutine DeclKind = iota
	DeclObject
	DeclGlobal
	DeclProperty
	DeclConstant
	DeclInsertFile
	DeclVersion
	DeclPrinc
	DeclSname
	DeclSet
	DeclDirections
	DeclSyntax
	DeclSynonym
	DeclDefmac
	DeclBuzz
)

// Param is a local-variable binding with an optional default value
// expression, used for OPT and AUX routine parameter sections.
type Param struct {
	Name    string
	Default *Expr // nil when no default was given
}

// Routine is a ZIL function: up to 15 local slots across parameters,
// optional parameters, and auxiliary (AUX) variables.
type Routine struct {
	Name        string
	Parameters  []string
	Optional    []Param
	Auxiliaries []Param
	Body        []*Expr
}

// TotalLocals returns the number of local variable slots this routine
// declares; callers enforce the <= 15 invariant.
func (r *Routine) TotalLocals() int {
	return len(r.Parameters) + len(r.Optional) + len(r.Auxiliaries)
}

// ObjectProperty is one (NAME value...) clause in an OBJECT declaration.
// Properties are not unique by name at parse time; order is preserved.
type ObjectProperty struct {
	Name  string
	Value *Expr // multi-value forms are wrapped in an ExprList by the parser
}

// Object is a ZIL game-world entity declaration.
type Object struct {
	Name       string
	Properties []ObjectProperty
}

// Global is a SETG/GLOBAL declaration.
type Global struct {
	Name  string
	Value *Expr
}

// PropertyDef is a PROPDEF declaration (property default value).
type PropertyDef struct {
	Name    string
	Default *Expr
}

// Constant is a CONSTANT declaration.
type Constant struct {
	Name  string
	Value *Expr
}

// InsertFile names a file already spliced in by the include resolver; the
// parser's final declaration stream never contains this variant (the
// parser strips it), but it is retained as a data-model variant for
// intermediate resolver state.
type InsertFile struct {
	Filename string
}

// Version records the target Z-Machine version keyword (e.g. ZIP, EZIP).
type Version struct {
	Keyword string
}

// Princ is a <PRINC "..."> top-level print-at-load directive.
type Princ struct {
	Text string
}

// Sname names the story file / vocabulary segment.
type Sname struct {
	Name string
}

// Set is a top-level compile-time <SET NAME value> assignment, distinct
// from the generator-level SET/SETG statement inside routine bodies.
type Set struct {
	Name  string
	Value *Expr
}

// Directions lists room-exit direction atoms, later numbered into P?DIR
// constants by the code generator.
type Directions struct {
	Names []string
}

// Syntax declares a verb grammar line.
type Syntax struct {
	Raw []*Expr
}

// Synonym declares alternate spellings of a verb/word.
type Synonym struct {
	Names []string
}

// Defmac declares a macro; mirrors Macro below but as a raw declaration
// prior to registration with the macro processor.
type Defmac struct {
	Name   string
	Params []MacroParameter
	Body   *Expr
}

// Buzz declares buzzwords (words the parser's dictionary ignores).
type Buzz struct {
	Names []string
}

// Decl is a top-level ZIL declaration: a tagged union over the *Kind
// structs above, each carrying its own fields plus a shared Location.
type Decl struct {
	Kind     DeclKind
	Location token.Location

	Routine    *Routine
	Object     *Object
	Global     *Global
	Property   *PropertyDef
	Constant   *Constant
	InsertFile *InsertFile
	Version    *Version
	Princ      *Princ
	Sname      *Sname
	Set        *Set
	Directions *Directions
	Syntax     *Syntax
	Synonym    *Synonym
	Defmac     *Defmac
	Buzz       *Buzz
}

// MacroParameterKind tags a macro parameter's binding mode.
type MacroParameterKind int

const (
	ParamStandard MacroParameterKind = iota
	ParamQuoted
	ParamVariableArgs
	ParamOptional
)

// MacroParameter is one entry in a macro's parameter list. This is the
// richer representation used in place of a legacy []string form.
type MacroParameter struct {
	Kind    MacroParameterKind
	Name    string
	Default *Expr // valid only for ParamOptional
}

// Macro is a registered macro definition.
type Macro struct {
	Name      string
	Params    []MacroParameter
	Body      *Expr
	IsBuiltIn bool
}

// MinArity is the count of Standard+Quoted parameters.
func (m *Macro) MinArity() int {
	n := 0
	for _, p := range m.Params {
		if p.Kind == ParamStandard || p.Kind == ParamQuoted {
			n++
		}
	}
	return n
}

// MaxArity is the total parameter count, or -1 if unbounded (a
// VariableArgs parameter is present).
func (m *Macro) MaxArity() int {
	for _, p := range m.Params {
		if p.Kind == ParamVariableArgs {
			return -1
		}
	}
	return len(m.Params)
}
