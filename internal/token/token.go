// Package token defines the lexical tokens produced by the ZIL lexer.
package token

import "fmt"

// Location pins a token, AST node, or diagnostic to a point in source text.
// Immutable once constructed.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Kind identifies the tagged-union variant carried by a Token.
type Kind int

const (
	LeftAngle Kind = iota
	RightAngle
	LeftParen
	RightParen
	Indirection
	Number
	String
	Atom
	GlobalVariable
	LocalVariable
	PropertyReference
	FlagReference
	LineComment
	EndOfFile
	Invalid
)

func (k Kind) String() string {
	switch k {
	case LeftAngle:
		return "LeftAngle"
	case RightAngle:
		return "RightAngle"
	case LeftParen:
		return "LeftParen"
	case RightParen:
		return "RightParen"
	case Indirection:
		return "Indirection"
	case Number:
		return "Number"
	case String:
		return "String"
	case Atom:
		return "Atom"
	case GlobalVariable:
		return "GlobalVariable"
	case LocalVariable:
		return "LocalVariable"
	case PropertyReference:
		return "PropertyReference"
	case FlagReference:
		return "FlagReference"
	case LineComment:
		return "LineComment"
	case EndOfFile:
		return "EndOfFile"
	default:
		return "Invalid"
	}
}

// Token is a tagged union over Kind; only the fields relevant to Kind are
// populated. Raw holds the exact source text the token was scanned from.
type Token struct {
	Kind     Kind
	Raw      string
	Location Location

	NumberValue int16  // valid when Kind == Number
	Name        string // valid for Atom/GlobalVariable/LocalVariable/PropertyReference/FlagReference
	Text        string // valid for String/LineComment (escapes already processed for String)
	InvalidChar rune   // valid when Kind == Invalid
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Raw, t.Location)
}
