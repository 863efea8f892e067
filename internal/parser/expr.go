package parser

import (
	"strings"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/token"
)

var tableKindNames = map[string]ast.TableKind{
	"ITABLE": ast.ITABLE,
	"LTABLE": ast.LTABLE,
	"TABLE":  ast.TABLE,
	"PTABLE": ast.PTABLE,
	"BTABLE": ast.BTABLE,
}

// parseExpr parses one expression: a leaf token, or a bracketed list/table,
// or an indirection.
func (p *Parser) parseExpr() (*ast.Expr, error) {
	t := p.peek()
	switch t.Kind {
	case token.Number:
		p.advance()
		return &ast.Expr{Kind: ast.ExprNumber, Number: t.NumberValue, Location: t.Location}, nil
	case token.String:
		p.advance()
		return &ast.Expr{Kind: ast.ExprString, Text: t.Text, Location: t.Location}, nil
	case token.Atom:
		p.advance()
		return &ast.Expr{Kind: ast.ExprAtom, Name: t.Name, Location: t.Location}, nil
	case token.GlobalVariable:
		p.advance()
		return &ast.Expr{Kind: ast.ExprGlobalVariable, Name: t.Name, Location: t.Location}, nil
	case token.LocalVariable:
		p.advance()
		return &ast.Expr{Kind: ast.ExprLocalVariable, Name: t.Name, Location: t.Location}, nil
	case token.PropertyReference:
		p.advance()
		return &ast.Expr{Kind: ast.ExprPropertyReference, Name: t.Name, Location: t.Location}, nil
	case token.FlagReference:
		p.advance()
		return &ast.Expr{Kind: ast.ExprFlagReference, Name: t.Name, Location: t.Location}, nil
	case token.Indirection:
		p.advance()
		return p.parseIndirectionTarget(t.Location)
	case token.LeftAngle:
		p.advance()
		return p.parseExprListTail(t.Location, true)
	case token.LeftParen:
		p.advance()
		return p.parseExprListTail(t.Location, false)
	default:
		return nil, diag.NewError(diag.UnexpectedToken, t.Location, "unexpected token in expression: "+t.Kind.String())
	}
}

// parseIndirectionTarget parses the expression immediately following '!'.
// Only an Atom or GlobalVariable is a legal target; any other expression
// is a syntax error.
func (p *Parser) parseIndirectionTarget(bangLoc token.Location) (*ast.Expr, error) {
	t := p.peek()
	var target *ast.Expr
	switch t.Kind {
	case token.Atom:
		p.advance()
		target = &ast.Expr{Kind: ast.ExprAtom, Name: t.Name, Location: t.Location}
	case token.GlobalVariable:
		p.advance()
		target = &ast.Expr{Kind: ast.ExprGlobalVariable, Name: t.Name, Location: t.Location}
	default:
		return nil, diag.NewError(diag.InvalidSyntax, bangLoc, "indirection '!' target must be an atom or global variable, found "+t.Kind.String())
	}
	return &ast.Expr{Kind: ast.ExprIndirection, Location: bangLoc, Children: []*ast.Expr{target}}, nil
}

// parseExprListTail parses bracket contents until the matching close
// token (already having consumed the opening '<' or '(' at openLoc), and
// recognizes the five table-literal forms by their leading keyword atom.
func (p *Parser) parseExprListTail(openLoc token.Location, angle bool) (*ast.Expr, error) {
	closeKind := token.RightParen
	if angle {
		closeKind = token.RightAngle
	}

	var children []*ast.Expr
	for {
		t := p.peek()
		if t.Kind == closeKind {
			p.advance()
			break
		}
		if t.Kind == token.EndOfFile {
			return nil, diag.NewError(diag.UnexpectedEndOfFile, t.Location, "unterminated list starting at "+openLoc.String())
		}
		child, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	if angle && len(children) > 0 && children[0].Kind == ast.ExprAtom {
		if tk, ok := tableKindNames[strings.ToUpper(children[0].Name)]; ok {
			return &ast.Expr{Kind: ast.ExprTable, TableKind: tk, Location: openLoc, Children: children[1:]}, nil
		}
	}

	return &ast.Expr{Kind: ast.ExprList, Location: openLoc, Angle: angle, Children: children}, nil
}
