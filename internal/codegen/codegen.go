// Package codegen implements the two-pass ZAP code generator: a layout
// pass populates the ordered memory view, then an emission pass walks it
// producing ZAP assembly text section by section.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/layout"
	"github.com/davetcode/zilc/internal/stringpool"
	"github.com/davetcode/zilc/internal/symtab"
	"github.com/davetcode/zilc/internal/token"
)

// Options configures one Generate call.
type Options struct {
	Version  int // 3..8
	OptLevel int // 0 = debug output, >=1 = production output
}

// Generator drives the two passes over one declaration stream.
type Generator struct {
	Opts    Options
	Version int
	Memory  *layout.Memory
	Strings *stringpool.Pool
	Table   *symtab.Table
	Diags   *diag.Collector
}

// New returns a Generator. table may be nil if no prior semantic pass ran
// (routine-call resolution then always falls back to CALL).
func New(opts Options, table *symtab.Table) *Generator {
	if opts.Version == 0 {
		opts.Version = 5
	}
	return &Generator{
		Opts:    opts,
		Version: opts.Version,
		Memory:  layout.New(),
		Strings: stringpool.New(),
		Table:   table,
		Diags:   diag.NewCollector(),
	}
}

func token0() token.Location { return token.Location{} }

func (g *Generator) symbolIsRoutine(name string) (bool, bool) {
	if g.Table == nil {
		return false, false
	}
	sym, ok := g.Table.Lookup(name)
	if !ok {
		return false, false
	}
	return sym.Type.Kind == symtab.KindRoutine, true
}

// Generate runs both passes over decls and returns the assembled ZAP
// text, or the first fatal error encountered (non-fatal issues are
// recorded on g.Diags instead).
func Generate(decls []*ast.Decl, opts Options, table *symtab.Table) (string, error) {
	g := New(opts, table)
	if err := g.layoutPass(decls); err != nil {
		return "", err
	}
	return g.emitPass(decls)
}

// layoutPass populates g.Memory: routines by name; objects; globals and
// constants (reduced via a narrow evaluator over numbers/strings/atoms/
// global-variable references only); properties defined by declaration or
// referenced from an object; DIRECTIONS converted into numbered P?DIR
// constants. String literals are pooled later, during emission.
func (g *Generator) layoutPass(decls []*ast.Decl) error {
	for _, d := range decls {
		switch d.Kind {
		case ast.DeclRoutine:
			g.Memory.AddRoutine(d.Routine)
		case ast.DeclObject:
			g.Memory.AddObject(d.Object)
			for _, p := range d.Object.Properties {
				if p.Name != "FLAGS" && !g.Memory.HasProperty(p.Name) {
					g.Memory.AddProperty(p.Name, nil)
				}
			}
		case ast.DeclGlobal:
			v, err := g.reduceConstant(d.Global.Value)
			if err != nil {
				return err
			}
			g.Memory.AddGlobal(d.Global.Name, v)
		case ast.DeclConstant:
			v, err := g.reduceConstant(d.Constant.Value)
			if err != nil {
				return err
			}
			g.Memory.AddConstant(d.Constant.Name, v)
		case ast.DeclProperty:
			if !g.Memory.HasProperty(d.Property.Name) {
				v, err := g.reduceConstant(d.Property.Default)
				if err != nil {
					return err
				}
				g.Memory.AddProperty(d.Property.Name, v)
			}
		case ast.DeclDirections:
			for i, name := range d.Directions.Names {
				g.Memory.AddConstant("P?"+name, &ast.Expr{Kind: ast.ExprNumber, Number: int16(i + 1)})
			}
			g.Memory.Directions = append(g.Memory.Directions, d.Directions.Names...)
		}
	}
	return nil
}

// reduceConstant evaluates e through the same narrow set layout pass 1
// tolerates: numbers, strings, atoms, and global-variable references pass
// through unchanged; any other shape is rejected as memoryLayoutError.
func (g *Generator) reduceConstant(e *ast.Expr) (*ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Kind {
	case ast.ExprNumber, ast.ExprString, ast.ExprAtom, ast.ExprGlobalVariable:
		return e, nil
	default:
		return nil, diag.NewError(diag.MemoryLayoutError, e.Location, "constant/global initializer must reduce to a number, string, or atom")
	}
}

func (g *Generator) emitPass(decls []*ast.Decl) (string, error) {
	var out []string
	debug := g.Opts.OptLevel == 0

	if debug {
		out = append(out, fmt.Sprintf("; ZAP output, target version %d", g.Version))
		out = append(out, "; section: header")
	}
	out = append(out, fmt.Sprintf(".ZVERSION %d", g.Version))

	if debug {
		out = append(out, "; section: constants")
	}
	for _, c := range g.Memory.Constants {
		out = append(out, fmt.Sprintf(".CONSTANT %s %s", c.Name, g.renderConstExpr(c.Value)))
	}

	if debug {
		out = append(out, "; section: globals")
	}
	for _, gl := range g.Memory.Globals {
		out = append(out, fmt.Sprintf(".GLOBAL\t%s", gl.Name))
	}

	if debug {
		out = append(out, "; section: properties")
	}
	for _, p := range g.Memory.Properties {
		out = append(out, fmt.Sprintf(".PROPERTY\t%s", p.Name))
	}

	if debug {
		out = append(out, "; section: objects")
	}
	for _, o := range g.Memory.Objects {
		out = append(out, g.renderObject(o)...)
	}

	if debug {
		out = append(out, "; section: functions")
	}
	for _, r := range g.Memory.Routines {
		lines, err := g.renderRoutine(r)
		if err != nil {
			return "", err
		}
		out = append(out, lines...)
	}

	if debug {
		out = append(out, "; section: strings")
	}
	for _, s := range g.Strings.Entries() {
		out = append(out, fmt.Sprintf(".STRING STR%d %q", s.ID, s.Value))
	}

	if debug {
		out = append(out, fmt.Sprintf("; %d routines, %d objects, %d strings", len(g.Memory.Routines), len(g.Memory.Objects), g.Strings.Len()))
	}
	out = append(out, ".END")

	out = peephole(out)
	return strings.Join(out, "\n") + "\n", nil
}

func (g *Generator) renderConstExpr(e *ast.Expr) string {
	if e == nil {
		return "0"
	}
	switch e.Kind {
	case ast.ExprNumber:
		return strconv.Itoa(int(e.Number))
	case ast.ExprString:
		return strconv.Quote(e.Text)
	case ast.ExprGlobalVariable:
		return "'" + e.Name
	default:
		return e.Name
	}
}

func (g *Generator) renderObject(o *ast.Object) []string {
	out := []string{fmt.Sprintf(".OBJECT %s", o.Name)}
	for _, p := range o.Properties {
		out = append(out, fmt.Sprintf("\t%s\t%s", p.Name, g.renderConstExpr(valueOrAtom(p.Value))))
	}
	out = append(out, ".ENDOBJECT")
	return out
}

func valueOrAtom(e *ast.Expr) *ast.Expr {
	if e == nil {
		return &ast.Expr{Kind: ast.ExprNumber, Number: 0}
	}
	return e
}

func (g *Generator) renderRoutine(r *ast.Routine) ([]string, error) {
	b := newBuilder()
	locals := map[string]bool{}
	for _, p := range r.Parameters {
		locals[p] = true
	}
	for _, p := range r.Optional {
		locals[p.Name] = true
	}
	for _, p := range r.Auxiliaries {
		locals[p.Name] = true
	}

	for _, stmt := range r.Body {
		if _, err := g.lowerExpr(b, locals, stmt); err != nil {
			return nil, err
		}
	}
	if !b.lastIsReturnForm() {
		b.emit("RTRUE")
	}

	header := fmt.Sprintf(".FUNCT\t%s%s", r.Name, renderParamList(r))
	body := b.render()
	out := make([]string, 0, len(body)+2)
	out = append(out, header)
	out = append(out, body...)
	out = append(out, ".ENDI")
	return out, nil
}

func renderParamList(r *ast.Routine) string {
	var parts []string
	parts = append(parts, r.Parameters...)
	for _, p := range r.Optional {
		if p.Default != nil {
			parts = append(parts, fmt.Sprintf("(%s=%s)", p.Name, exprToRough(p.Default)))
		} else {
			parts = append(parts, fmt.Sprintf("(%s)", p.Name))
		}
	}
	for _, p := range r.Auxiliaries {
		parts = append(parts, fmt.Sprintf("(%s)", p.Name))
	}
	if len(parts) == 0 {
		return ""
	}
	return "," + strings.Join(parts, ",")
}

func exprToRough(e *ast.Expr) string {
	return ast.Print(e)
}

// peephole removes a "JUMP X" immediately followed by a line defining
// label X, the only optimization the generator performs; it runs at every
// optimization level.
func peephole(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if i+1 < len(lines) {
			cur := strings.TrimSpace(lines[i])
			if strings.HasPrefix(cur, "JUMP ") {
				target := strings.TrimSpace(strings.TrimPrefix(cur, "JUMP"))
				next := lines[i+1]
				if strings.HasPrefix(next, target+":") {
					continue
				}
			}
		}
		out = append(out, lines[i])
	}
	return out
}
