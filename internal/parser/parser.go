// Package parser implements the recursive-descent S-expression parser and
// INSERT-FILE include resolver. One Parser instance handles one file;
// nested includes get a fresh instance sharing only the include stack,
// matching a one-state-owner-per-component discipline.
package parser

import (
	"os"
	"path/filepath"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/lexer"
	"github.com/davetcode/zilc/internal/token"
)

// Parser consumes a token stream for one file and produces a flat,
// include-spliced list of declarations.
type Parser struct {
	file string
	dir  string
	toks []token.Token
	pos  int

	includes *includeStack
}

// ParseFile reads file from disk, tokenizes and parses it, resolving any
// INSERT-FILE declarations relative to file's directory and the working
// directory. This is the top-level entry point; it owns a fresh include
// stack seeded with file's own resolved path.
func ParseFile(file string) ([]*ast.Decl, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, diag.NewError(diag.FileNotFound, token.Location{File: file}, err.Error())
	}
	st := newIncludeStack()
	return parseFilePushing(abs, st)
}

// ParseSource parses src as if it were the contents of a (possibly
// virtual) file named name. No
// include resolution against disk happens for the root document's own
// identity, but nested INSERT-FILE declarations still hit the filesystem.
func ParseSource(name, src string) ([]*ast.Decl, error) {
	st := newIncludeStack()
	return parseSource(name, src, st)
}

func parseFilePushing(abs string, st *includeStack) ([]*ast.Decl, error) {
	if err := st.push(abs); err != nil {
		return nil, err
	}
	defer st.pop()

	bytes, err := os.ReadFile(abs)
	if err != nil {
		return nil, diag.NewError(diag.FileNotFound, token.Location{File: abs}, "cannot read "+abs+": "+err.Error())
	}
	return parseSource(abs, string(bytes), st)
}

func parseSource(file, src string, st *includeStack) ([]*ast.Decl, error) {
	lx := lexer.New(file, src)
	toks, err := lexer.TokenizeAll(lx)
	if err != nil {
		return nil, err
	}
	p := &Parser{file: file, dir: filepath.Dir(file), toks: toks, includes: st}
	return p.parseProgram()
}

func (p *Parser) here() token.Location {
	if p.pos < len(p.toks) {
		return p.toks[p.pos].Location
	}
	if len(p.toks) > 0 {
		return p.toks[len(p.toks)-1].Location
	}
	return token.Location{File: p.file, Line: 1, Column: 1}
}

func (p *Parser) peek() token.Token {
	for p.pos < len(p.toks) && p.toks[p.pos].Kind == token.LineComment {
		p.pos++
	}
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EndOfFile, Location: p.here()}
	}
	return p.toks[p.pos]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *Parser) expectKind(k token.Kind, what string) (token.Token, error) {
	t := p.peek()
	if t.Kind != k {
		return token.Token{}, diag.NewError(diag.UnexpectedToken, t.Location, "expected "+what+", found "+t.Kind.String())
	}
	return p.advance(), nil
}

// parseProgram is the top-level loop: skip stray comments/strings, open
// declarations on '<', splice includes inline as they're encountered.
func (p *Parser) parseProgram() ([]*ast.Decl, error) {
	var out []*ast.Decl
	for {
		t := p.peek()
		if t.Kind == token.EndOfFile {
			return out, nil
		}
		if t.Kind == token.String {
			p.advance() // standalone top-level string: ignored
			continue
		}
		if t.Kind != token.LeftAngle {
			return nil, diag.NewError(diag.UnexpectedToken, t.Location, "expected '<' to start a declaration, found "+t.Kind.String())
		}
		decls, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		out = append(out, decls...)
	}
}

// parseDeclaration parses one <...> form at top level. It returns a slice
// because INSERT-FILE expands into zero-or-more spliced declarations.
func (p *Parser) parseDeclaration() ([]*ast.Decl, error) {
	openLoc := p.here()
	if _, err := p.expectKind(token.LeftAngle, "'<'"); err != nil {
		return nil, err
	}

	kwTok := p.peek()
	if kwTok.Kind != token.Atom {
		return nil, diag.NewError(diag.UnknownDeclaration, kwTok.Location, "expected a declaration keyword, found "+kwTok.Kind.String())
	}
	kw := kwTok.Name

	switch kw {
	case "ROUTINE":
		p.advance()
		d, err := p.parseRoutineBody(openLoc)
		return oneOrNil(d), err
	case "OBJECT", "ROOM":
		p.advance()
		d, err := p.parseObjectBody(openLoc)
		return oneOrNil(d), err
	case "SETG", "GLOBAL":
		p.advance()
		d, err := p.parseGlobalBody(openLoc)
		return oneOrNil(d), err
	case "PROPDEF":
		p.advance()
		d, err := p.parsePropdefBody(openLoc)
		return oneOrNil(d), err
	case "CONSTANT":
		p.advance()
		d, err := p.parseConstantBody(openLoc)
		return oneOrNil(d), err
	case "INSERT-FILE":
		p.advance()
		return p.parseInsertFile(openLoc)
	case "VERSION":
		p.advance()
		d, err := p.parseVersionBody(openLoc)
		return oneOrNil(d), err
	case "PRINC":
		p.advance()
		d, err := p.parsePrincBody(openLoc)
		return oneOrNil(d), err
	case "SNAME":
		p.advance()
		d, err := p.parseSnameBody(openLoc)
		return oneOrNil(d), err
	case "SET":
		p.advance()
		d, err := p.parseSetBody(openLoc)
		return oneOrNil(d), err
	case "DIRECTIONS":
		p.advance()
		d, err := p.parseDirectionsBody(openLoc)
		return oneOrNil(d), err
	case "SYNTAX":
		p.advance()
		d, err := p.parseSyntaxBody(openLoc)
		return oneOrNil(d), err
	case "SYNONYM":
		p.advance()
		d, err := p.parseSynonymBody(openLoc)
		return oneOrNil(d), err
	case "DEFMAC":
		p.advance()
		d, err := p.parseDefmacBody(openLoc)
		return oneOrNil(d), err
	case "BUZZ":
		p.advance()
		d, err := p.parseBuzzBody(openLoc)
		return oneOrNil(d), err
	default:
		// Unknown declaration: parse the full expression for error
		// locality, then report unknownDeclaration.
		if _, err := p.parseExprListTail(openLoc, true); err != nil {
			return nil, err
		}
		return nil, diag.NewError(diag.UnknownDeclaration, kwTok.Location, "unknown top-level declaration: "+kw)
	}
}

func oneOrNil(d *ast.Decl) []*ast.Decl {
	if d == nil {
		return nil
	}
	return []*ast.Decl{d}
}

func (p *Parser) closeAngle() error {
	_, err := p.expectKind(token.RightAngle, "'>'")
	return err
}
