package parser

import (
	"strings"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/token"
)

func (p *Parser) expectAtomName(what string, code diag.Code) (string, error) {
	t := p.peek()
	if t.Kind != token.Atom {
		return "", diag.NewError(code, t.Location, "expected "+what+", found "+t.Kind.String())
	}
	p.advance()
	return t.Name, nil
}

// parseRoutineBody parses <ROUTINE NAME (params...) body...> with the
// opening "<ROUTINE" already consumed.
func (p *Parser) parseRoutineBody(loc token.Location) (*ast.Decl, error) {
	name, err := p.expectAtomName("a routine name", diag.ExpectedRoutineName)
	if err != nil {
		return nil, err
	}

	if _, err := p.expectKind(token.LeftParen, "'(' to start the parameter list"); err != nil {
		return nil, err
	}

	r := &ast.Routine{Name: name}
	section := "required"
	for {
		t := p.peek()
		if t.Kind == token.RightParen {
			p.advance()
			break
		}
		if t.Kind == token.EndOfFile {
			return nil, diag.NewError(diag.UnexpectedEndOfFile, t.Location, "unterminated parameter list for routine "+name)
		}
		if t.Kind == token.String {
			switch strings.ToUpper(t.Text) {
			case "OPT", "OPTIONAL":
				p.advance()
				section = "opt"
				continue
			case "AUX", "EXTRA":
				p.advance()
				section = "aux"
				continue
			}
		}
		if t.Kind == token.Atom {
			p.advance()
			param := ast.Param{Name: t.Name}
			if section == "required" {
				r.Parameters = append(r.Parameters, t.Name)
				continue
			}
			if section == "opt" {
				r.Optional = append(r.Optional, param)
			} else {
				r.Auxiliaries = append(r.Auxiliaries, param)
			}
			continue
		}
		if t.Kind == token.LeftParen {
			p.advance()
			nameTok, err := p.expectKind(token.Atom, "a parameter name")
			if err != nil {
				return nil, err
			}
			if section == "required" {
				return nil, diag.NewError(diag.InvalidParameterSect, nameTok.Location, "default values are forbidden in the required parameter section")
			}
			var def *ast.Expr
			if p.peek().Kind != token.RightParen {
				def, err = p.parseExpr()
				if err != nil {
					return nil, err
				}
			}
			if _, err := p.expectKind(token.RightParen, "')' to close parameter default"); err != nil {
				return nil, err
			}
			param := ast.Param{Name: nameTok.Name, Default: def}
			if section == "opt" {
				r.Optional = append(r.Optional, param)
			} else {
				r.Auxiliaries = append(r.Auxiliaries, param)
			}
			continue
		}
		return nil, diag.NewError(diag.ExpectedParameterName, t.Location, "expected a parameter name, found "+t.Kind.String())
	}

	if r.TotalLocals() > 15 {
		return nil, diag.NewError(diag.InvalidParameterSect, loc, "routine "+name+" declares more than 15 local variable slots")
	}

	for p.peek().Kind != token.RightAngle {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		r.Body = append(r.Body, expr)
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}

	return &ast.Decl{Kind: ast.DeclRoutine, Location: loc, Routine: r}, nil
}

// parseObjectBody parses <OBJECT NAME (prop value...) ...>.
func (p *Parser) parseObjectBody(loc token.Location) (*ast.Decl, error) {
	name, err := p.expectAtomName("an object name", diag.ExpectedObjectName)
	if err != nil {
		return nil, err
	}
	obj := &ast.Object{Name: name}

	for p.peek().Kind != token.RightAngle {
		if _, err := p.expectKind(token.LeftParen, "'(' to start an object property"); err != nil {
			return nil, err
		}
		propTok, err := p.expectKind(token.Atom, "a property name")
		if err != nil {
			return nil, err
		}
		var values []*ast.Expr
		for p.peek().Kind != token.RightParen {
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		if _, err := p.expectKind(token.RightParen, "')' to close an object property"); err != nil {
			return nil, err
		}

		var value *ast.Expr
		switch len(values) {
		case 0:
			value = &ast.Expr{Kind: ast.ExprList, Location: propTok.Location}
		case 1:
			value = values[0]
		default:
			value = &ast.Expr{Kind: ast.ExprList, Location: propTok.Location, Children: values}
		}
		obj.Properties = append(obj.Properties, ast.ObjectProperty{Name: propTok.Name, Value: value})
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}

	return &ast.Decl{Kind: ast.DeclObject, Location: loc, Object: obj}, nil
}

func (p *Parser) parseGlobalBody(loc token.Location) (*ast.Decl, error) {
	name, err := p.expectAtomName("a global name", diag.ExpectedGlobalName)
	if err != nil {
		return nil, err
	}
	var value *ast.Expr
	if p.peek().Kind != token.RightAngle {
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return &ast.Decl{Kind: ast.DeclGlobal, Location: loc, Global: &ast.Global{Name: name, Value: value}}, nil
}

func (p *Parser) parsePropdefBody(loc token.Location) (*ast.Decl, error) {
	name, err := p.expectAtomName("a property name", diag.ExpectedPropertyName)
	if err != nil {
		return nil, err
	}
	var def *ast.Expr
	if p.peek().Kind != token.RightAngle {
		def, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return &ast.Decl{Kind: ast.DeclProperty, Location: loc, Property: &ast.PropertyDef{Name: name, Default: def}}, nil
}

func (p *Parser) parseConstantBody(loc token.Location) (*ast.Decl, error) {
	name, err := p.expectAtomName("a constant name", diag.ExpectedConstantName)
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return &ast.Decl{Kind: ast.DeclConstant, Location: loc, Constant: &ast.Constant{Name: name, Value: value}}, nil
}

func (p *Parser) parseVersionBody(loc token.Location) (*ast.Decl, error) {
	t := p.peek()
	if t.Kind != token.Atom {
		return nil, diag.NewError(diag.ExpectedVersionType, t.Location, "expected a version keyword, found "+t.Kind.String())
	}
	p.advance()
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return &ast.Decl{Kind: ast.DeclVersion, Location: loc, Version: &ast.Version{Keyword: t.Name}}, nil
}

func (p *Parser) parsePrincBody(loc token.Location) (*ast.Decl, error) {
	t, err := p.expectKind(token.String, "a string literal")
	if err != nil {
		return nil, err
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return &ast.Decl{Kind: ast.DeclPrinc, Location: loc, Princ: &ast.Princ{Text: t.Text}}, nil
}

func (p *Parser) parseSnameBody(loc token.Location) (*ast.Decl, error) {
	name, err := p.expectAtomName("a name", diag.ExpectedAtom)
	if err != nil {
		return nil, err
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return &ast.Decl{Kind: ast.DeclSname, Location: loc, Sname: &ast.Sname{Name: name}}, nil
}

func (p *Parser) parseSetBody(loc token.Location) (*ast.Decl, error) {
	name, err := p.expectAtomName("a name", diag.ExpectedAtom)
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return &ast.Decl{Kind: ast.DeclSet, Location: loc, Set: &ast.Set{Name: name, Value: value}}, nil
}

func (p *Parser) parseDirectionsBody(loc token.Location) (*ast.Decl, error) {
	var names []string
	for p.peek().Kind != token.RightAngle {
		n, err := p.expectAtomName("a direction name", diag.ExpectedAtom)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return &ast.Decl{Kind: ast.DeclDirections, Location: loc, Directions: &ast.Directions{Names: names}}, nil
}

func (p *Parser) parseSyntaxBody(loc token.Location) (*ast.Decl, error) {
	var raw []*ast.Expr
	for p.peek().Kind != token.RightAngle {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		raw = append(raw, e)
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return &ast.Decl{Kind: ast.DeclSyntax, Location: loc, Syntax: &ast.Syntax{Raw: raw}}, nil
}

func (p *Parser) parseSynonymBody(loc token.Location) (*ast.Decl, error) {
	var names []string
	for p.peek().Kind != token.RightAngle {
		n, err := p.expectAtomName("a synonym name", diag.ExpectedAtom)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return &ast.Decl{Kind: ast.DeclSynonym, Location: loc, Synonym: &ast.Synonym{Names: names}}, nil
}

func (p *Parser) parseBuzzBody(loc token.Location) (*ast.Decl, error) {
	var names []string
	for p.peek().Kind != token.RightAngle {
		n, err := p.expectAtomName("a buzzword", diag.ExpectedAtom)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return &ast.Decl{Kind: ast.DeclBuzz, Location: loc, Buzz: &ast.Buzz{Names: names}}, nil
}

// parseDefmacBody parses <DEFMAC NAME (params...) body>.
func (p *Parser) parseDefmacBody(loc token.Location) (*ast.Decl, error) {
	name, err := p.expectAtomName("a macro name", diag.ExpectedAtom)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(token.LeftParen, "'(' to start the macro parameter list"); err != nil {
		return nil, err
	}

	var params []ast.MacroParameter
	for p.peek().Kind != token.RightParen {
		t := p.peek()
		switch t.Kind {
		case token.Atom:
			p.advance()
			params = append(params, ast.MacroParameter{Kind: ast.ParamStandard, Name: t.Name})
		case token.Indirection:
			p.advance()
			nameTok, err := p.expectKind(token.Atom, "a quoted parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, ast.MacroParameter{Kind: ast.ParamQuoted, Name: nameTok.Name})
		case token.LocalVariable:
			// ".NAME" marks a variable-arguments parameter.
			p.advance()
			params = append(params, ast.MacroParameter{Kind: ast.ParamVariableArgs, Name: t.Name})
		case token.LeftParen:
			p.advance()
			nameTok, err := p.expectKind(token.Atom, "an optional parameter name")
			if err != nil {
				return nil, err
			}
			var def *ast.Expr
			if p.peek().Kind != token.RightParen {
				def, err = p.parseExpr()
				if err != nil {
					return nil, err
				}
			}
			if _, err := p.expectKind(token.RightParen, "')' to close optional parameter"); err != nil {
				return nil, err
			}
			params = append(params, ast.MacroParameter{Kind: ast.ParamOptional, Name: nameTok.Name, Default: def})
		default:
			return nil, diag.NewError(diag.ExpectedParameterName, t.Location, "expected a macro parameter, found "+t.Kind.String())
		}
	}
	if _, err := p.expectKind(token.RightParen, "')' to close the macro parameter list"); err != nil {
		return nil, err
	}

	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}

	return &ast.Decl{Kind: ast.DeclDefmac, Location: loc, Defmac: &ast.Defmac{Name: name, Params: params, Body: body}}, nil
}
