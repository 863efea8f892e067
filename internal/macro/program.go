package macro

import "github.com/davetcode/zilc/internal/ast"

// ExpandExpr expands every macro call reachable from e: FORM constructors,
// nested macro calls, and <EVAL ...> forms, the same way a macro body's
// own substitution pass does, just without a parameter-substitution
// context (no Atom/LocalVariable name carries a bound argument here).
func (p *Processor) ExpandExpr(e *ast.Expr) (*ast.Expr, error) {
	return p.substitute(e, map[string]*ast.Expr{}, nil)
}

// ExpandProgram registers every DEFMAC declaration with p, then expands
// macro calls throughout the rest of the program's expression trees
// (routine bodies, global/constant/property initializers, object
// property values). Defmac declarations are dropped from the result:
// once registered, they carry no further meaning for layout or codegen.
func ExpandProgram(decls []*ast.Decl, p *Processor) ([]*ast.Decl, error) {
	for _, d := range decls {
		if d.Kind == ast.DeclDefmac {
			if err := p.Define(d.Defmac.Name, d.Defmac.Params, d.Defmac.Body, d.Location); err != nil {
				return nil, err
			}
		}
	}

	out := make([]*ast.Decl, 0, len(decls))
	for _, d := range decls {
		if d.Kind == ast.DeclDefmac {
			continue
		}
		expanded, err := expandDecl(d, p)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

func expandDecl(d *ast.Decl, p *Processor) (*ast.Decl, error) {
	var err error
	switch d.Kind {
	case ast.DeclRoutine:
		for i, e := range d.Routine.Body {
			if d.Routine.Body[i], err = p.ExpandExpr(e); err != nil {
				return nil, err
			}
		}
		for i := range d.Routine.Optional {
			if err = expandParamDefault(&d.Routine.Optional[i], p); err != nil {
				return nil, err
			}
		}
		for i := range d.Routine.Auxiliaries {
			if err = expandParamDefault(&d.Routine.Auxiliaries[i], p); err != nil {
				return nil, err
			}
		}
	case ast.DeclObject:
		for i := range d.Object.Properties {
			if d.Object.Properties[i].Value, err = p.ExpandExpr(d.Object.Properties[i].Value); err != nil {
				return nil, err
			}
		}
	case ast.DeclGlobal:
		if d.Global.Value, err = p.ExpandExpr(d.Global.Value); err != nil {
			return nil, err
		}
	case ast.DeclProperty:
		if d.Property.Default != nil {
			if d.Property.Default, err = p.ExpandExpr(d.Property.Default); err != nil {
				return nil, err
			}
		}
	case ast.DeclConstant:
		if d.Constant.Value, err = p.ExpandExpr(d.Constant.Value); err != nil {
			return nil, err
		}
	case ast.DeclSet:
		if d.Set.Value, err = p.ExpandExpr(d.Set.Value); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func expandParamDefault(param *ast.Param, p *Processor) error {
	if param.Default == nil {
		return nil
	}
	expanded, err := p.ExpandExpr(param.Default)
	if err != nil {
		return err
	}
	param.Default = expanded
	return nil
}
