package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/token"
)

// includeStack tracks resolved absolute paths currently being parsed, LIFO
// discipline guaranteeing pop on every exit path, modeled on a CallStack's
// push/pop frames.
type includeStack struct {
	frames []string
}

func newIncludeStack() *includeStack {
	return &includeStack{}
}

func (s *includeStack) push(abs string) error {
	for i, f := range s.frames {
		if f == abs {
			chain := append(append([]string{}, s.frames[i:]...), abs)
			return diag.NewError(diag.CircularInclude, token.Location{File: abs}, "circular INSERT-FILE: "+strings.Join(chain, " -> ")).WithChain(chain)
		}
	}
	s.frames = append(s.frames, abs)
	return nil
}

func (s *includeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// parseInsertFile handles <INSERT-FILE "name"> (or a bare atom filename).
// It resolves candidates in order: exact, lowercase, exact+".zil",
// lowercase+".zil", first relative to the including file's directory,
// then the working directory.
func (p *Parser) parseInsertFile(loc token.Location) ([]*ast.Decl, error) {
	t := p.peek()
	var raw string
	switch t.Kind {
	case token.String:
		raw = t.Text
	case token.Atom:
		raw = t.Name
	default:
		return nil, diag.NewError(diag.ExpectedFilename, t.Location, "expected a filename, found "+t.Kind.String())
	}
	p.advance()
	if err := p.closeAngle(); err != nil {
		return nil, err
	}

	abs, err := resolveInclude(raw, p.dir)
	if err != nil {
		return nil, diag.NewError(diag.FileNotFound, loc, err.Error())
	}

	return parseFilePushing(abs, p.includes)
}

func resolveInclude(raw, includingDir string) (string, error) {
	lower := strings.ToLower(raw)
	candidateNames := []string{raw, lower, raw + ".zil", lower + ".zil"}

	searchDirs := []string{includingDir}
	if wd, err := os.Getwd(); err == nil {
		searchDirs = append(searchDirs, wd)
	}

	for _, dir := range searchDirs {
		for _, name := range candidateNames {
			candidate := name
			if !filepath.IsAbs(candidate) {
				candidate = filepath.Join(dir, name)
			}
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				abs, err := filepath.Abs(candidate)
				if err != nil {
					return "", err
				}
				return abs, nil
			}
		}
	}

	return "", &os.PathError{Op: "insert-file", Path: raw, Err: os.ErrNotExist}
}
