package codegen

import (
	"strconv"
	"strings"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/diag"
)

var arithmeticOps = map[string]string{
	"+": "ADD", "ADD": "ADD",
	"-": "SUB", "SUB": "SUB",
	"*": "MUL", "MUL": "MUL",
	"/": "DIV", "DIV": "DIV",
	"MOD": "MOD",
}

// lowerExpr lowers e into zero or more instructions on b, returning the
// operand text a caller should use to reference the resulting value
// (a literal, 'NAME, STACK, or a TEMPn).
func (g *Generator) lowerExpr(b *builder, locals map[string]bool, e *ast.Expr) (string, error) {
	if e == nil {
		return "", nil
	}
	switch e.Kind {
	case ast.ExprNumber:
		return strconv.Itoa(int(e.Number)), nil
	case ast.ExprString:
		id := g.Strings.Add(e.Text, e.Location)
		return "STR" + strconv.Itoa(id), nil
	case ast.ExprAtom:
		if e.Name == "T" || e.Name == "TRUE" {
			return "1", nil
		}
		if e.Name == "FALSE" {
			return "0", nil
		}
		return e.Name, nil
	case ast.ExprGlobalVariable:
		return "'" + e.Name, nil
	case ast.ExprLocalVariable:
		if locals[e.Name] {
			return e.Name, nil
		}
		return "'" + e.Name, nil
	case ast.ExprPropertyReference:
		return "P?" + e.Name, nil
	case ast.ExprFlagReference:
		return "F?" + e.Name, nil
	case ast.ExprList:
		return g.lowerList(b, locals, e)
	default:
		return "", diag.NewError(diag.UnsupportedExpression, e.Location, "cannot lower this expression shape")
	}
}

func (g *Generator) lowerArgs(b *builder, locals map[string]bool, args []*ast.Expr) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		v, err := g.lowerExpr(b, locals, a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// resultHolder picks a stack slot or a fresh temp for an intermediate
// result, per the depth < 8 stack-preference policy, and returns the
// operand text plus a function that releases the slot again (a stack pop,
// or a no-op for a temp).
func (g *Generator) resultHolder(b *builder) (string, func()) {
	if b.useStack() {
		b.push()
		return "STACK", b.pop
	}
	return b.newTemp(), func() {}
}

func (g *Generator) lowerList(b *builder, locals map[string]bool, e *ast.Expr) (string, error) {
	head := e.Head()
	if head == nil || head.Kind != ast.ExprAtom {
		return "", diag.NewError(diag.UnsupportedExpression, e.Location, "call head must be an atom")
	}
	name := head.Name
	args := e.Args()

	switch name {
	case "SET", "SETG":
		return g.lowerAssignment(b, locals, e)
	case "COND":
		return "", g.lowerCond(b, locals, args)
	case "REPEAT":
		return "", g.lowerRepeat(b, locals, args, false)
	case "WHILE":
		return "", g.lowerRepeat(b, locals, args, true)
	case "RETURN":
		if len(args) == 0 {
			b.emit("RETURN")
		} else {
			v, err := g.lowerExpr(b, locals, args[0])
			if err != nil {
				return "", err
			}
			b.emit("RETURN %s", v)
		}
		return "", nil
	case "RTRUE", "RFALSE", "QUIT", "RESTART", "VERIFY":
		b.emit("%s", name)
		return "", nil
	case "AND", "OR", "NOT":
		return g.lowerLogicValue(b, locals, name, args, e)
	case "TELL":
		return "", g.lowerTell(b, locals, args)
	}

	if _, ok := arithmeticOps[name]; ok {
		return g.lowerArithmetic(b, locals, name, args)
	}
	if comparisonPredicates[name] {
		return g.lowerPredicateValue(b, locals, name, args, e)
	}

	return g.lowerCall(b, locals, name, args, e)
}

func (g *Generator) lowerAssignment(b *builder, locals map[string]bool, e *ast.Expr) (string, error) {
	args := e.Args()
	if len(args) != 2 {
		return "", diag.NewError(diag.InvalidControlFlow, e.Location, "SET/SETG requires exactly a target and a value")
	}
	target := args[0]
	var targetName string
	var global bool
	switch target.Kind {
	case ast.ExprAtom, ast.ExprLocalVariable:
		targetName = target.Name
		global = !locals[targetName]
	case ast.ExprGlobalVariable:
		targetName = target.Name
		global = true
	default:
		return "", diag.NewError(diag.InvalidOperand, target.Location, "SET/SETG target must be a variable name")
	}
	value, err := g.lowerExpr(b, locals, args[1])
	if err != nil {
		return "", err
	}
	if global || e.Head().Name == "SETG" {
		b.emit("SETG %s,%s", targetName, value)
	} else {
		b.emit("SET %s,%s", targetName, value)
	}
	return value, nil
}

// lowerArithmetic left-to-right folds a variadic arithmetic form. Unary
// minus of one operand emits SUB 0,operand.
func (g *Generator) lowerArithmetic(b *builder, locals map[string]bool, name string, args []*ast.Expr) (string, error) {
	mnemonic := arithmeticOps[name]
	if len(args) == 0 {
		return "", diag.NewError(diag.InvalidOperand, token0(), name+" requires at least one operand")
	}
	if len(args) == 1 && (name == "-" || name == "SUB") {
		v, err := g.lowerExpr(b, locals, args[0])
		if err != nil {
			return "", err
		}
		holder, _ := g.resultHolder(b)
		b.emit("SUB 0,%s >%s", v, holder)
		return holder, nil
	}
	acc, err := g.lowerExpr(b, locals, args[0])
	if err != nil {
		return "", err
	}
	for _, rest := range args[1:] {
		v, err := g.lowerExpr(b, locals, rest)
		if err != nil {
			return "", err
		}
		holder, _ := g.resultHolder(b)
		b.emit("%s %s,%s >%s", mnemonic, acc, v, holder)
		acc = holder
	}
	return acc, nil
}

// lowerPredicateValue lowers a comparison used where a value (not a
// branch) is expected: branch to a TRUE label, otherwise fall through to
// FALSE, materializing a 0/1 result.
func (g *Generator) lowerPredicateValue(b *builder, locals map[string]bool, name string, args []*ast.Expr, e *ast.Expr) (string, error) {
	trueLbl := b.newLabel("TRUE")
	endLbl := b.newLabel("END")
	if err := g.emitPredicateBranch(b, locals, name, args, trueLbl, true); err != nil {
		return "", err
	}
	holder, _ := g.resultHolder(b)
	b.emit("SET %s,0", holder)
	b.emit("JUMP %s", endLbl)
	b.label(trueLbl)
	b.emit("SET %s,1", holder)
	b.label(endLbl)
	return holder, nil
}

// emitPredicateBranch emits the bare predicate opcode for name with a
// branch to target; onTrue selects '/'target (branch-on-true) vs
// '\'target (branch-on-false).
func (g *Generator) emitPredicateBranch(b *builder, locals map[string]bool, name string, args []*ast.Expr, target string, onTrue bool) error {
	mnemonic, ok := lookupMnemonic(name, g.Version)
	if !ok {
		return diag.NewError(diag.UnsupportedExpression, token0(), "no opcode mapping for predicate "+name)
	}
	operands, err := g.lowerArgs(b, locals, args)
	if err != nil {
		return err
	}
	if invertedPredicates[name] {
		onTrue = !onTrue
	}
	prefix := "/"
	if !onTrue {
		prefix = "\\"
	}
	if len(operands) == 0 {
		b.emit("%s %s%s", mnemonic, prefix, target)
	} else {
		b.emit("%s %s %s%s", mnemonic, strings.Join(operands, ","), prefix, target)
	}
	return nil
}

// emitConditionBranch emits the direct-condition-test form used for
// COND/WHILE/AND/OR: a predicate list branches directly; anything else
// is compared against zero.
func (g *Generator) emitConditionBranch(b *builder, locals map[string]bool, cond *ast.Expr, target string, onTrue bool) error {
	if cond.Kind == ast.ExprList {
		if head := cond.Head(); head != nil && head.Kind == ast.ExprAtom && comparisonPredicates[head.Name] {
			return g.emitPredicateBranch(b, locals, head.Name, cond.Args(), target, onTrue)
		}
	}
	v, err := g.lowerExpr(b, locals, cond)
	if err != nil {
		return err
	}
	prefix := "/"
	if !onTrue {
		prefix = "\\"
	}
	// ZERO? is true when the value IS zero, so branch-on-true targets the
	// "falsy" case; invert so callers get "branch when cond is truthy".
	b.emit("ZERO? %s %s%s", v, invertPrefix(prefix), target)
	return nil
}

func invertPrefix(p string) string {
	if p == "/" {
		return "\\"
	}
	return "/"
}

func (g *Generator) lowerLogicValue(b *builder, locals map[string]bool, name string, args []*ast.Expr, e *ast.Expr) (string, error) {
	falseLbl := b.newLabel("FALSE")
	trueLbl := b.newLabel("TRUE")
	endLbl := b.newLabel("END")

	switch name {
	case "AND":
		for _, a := range args {
			if err := g.emitConditionBranch(b, locals, a, falseLbl, false); err != nil {
				return "", err
			}
		}
		holder, _ := g.resultHolder(b)
		b.emit("SET %s,1", holder)
		b.emit("JUMP %s", endLbl)
		b.label(falseLbl)
		b.emit("SET %s,0", holder)
		b.label(endLbl)
		return holder, nil
	case "OR":
		for _, a := range args {
			if err := g.emitConditionBranch(b, locals, a, trueLbl, true); err != nil {
				return "", err
			}
		}
		holder, _ := g.resultHolder(b)
		b.emit("SET %s,0", holder)
		b.emit("JUMP %s", endLbl)
		b.label(trueLbl)
		b.emit("SET %s,1", holder)
		b.label(endLbl)
		return holder, nil
	default: // NOT
		if len(args) != 1 {
			return "", diag.NewError(diag.InvalidOperand, e.Location, "NOT takes exactly one operand")
		}
		if err := g.emitConditionBranch(b, locals, args[0], trueLbl, true); err != nil {
			return "", err
		}
		holder, _ := g.resultHolder(b)
		b.emit("SET %s,1", holder)
		b.emit("JUMP %s", endLbl)
		b.label(trueLbl)
		b.emit("SET %s,0", holder)
		b.label(endLbl)
		return holder, nil
	}
}

func (g *Generator) lowerCond(b *builder, locals map[string]bool, clauses []*ast.Expr) error {
	endLbl := b.newLabel("ELS")
	for i, clause := range clauses {
		if clause.Kind != ast.ExprList || len(clause.Children) < 1 {
			return diag.NewError(diag.InvalidControlFlow, clause.Location, "COND clause must be a (condition body...) list")
		}
		cond := clause.Children[0]
		body := clause.Children[1:]
		isLast := i == len(clauses)-1
		nextLbl := endLbl
		if !isLast {
			nextLbl = b.newLabel("ELS")
		}
		if err := g.emitConditionBranch(b, locals, cond, nextLbl, false); err != nil {
			return err
		}
		for _, stmt := range body {
			if _, err := g.lowerExpr(b, locals, stmt); err != nil {
				return err
			}
		}
		if !isLast {
			b.emit("JUMP %s", endLbl)
			b.label(nextLbl)
		}
	}
	b.label(endLbl)
	return nil
}

func (g *Generator) lowerRepeat(b *builder, locals map[string]bool, args []*ast.Expr, isWhile bool) error {
	loopLbl := b.newLabel("LOOP")
	endLbl := b.newLabel("ENDLOOP")
	body := args
	if isWhile {
		if len(args) == 0 {
			return diag.NewError(diag.InvalidControlFlow, token0(), "WHILE requires a leading test")
		}
		body = args[1:]
	}

	b.label(loopLbl)
	if isWhile {
		if err := g.emitConditionBranch(b, locals, args[0], endLbl, false); err != nil {
			return err
		}
	}
	b.pushLoopEnd(endLbl)
	for _, stmt := range body {
		if _, err := g.lowerExpr(b, locals, stmt); err != nil {
			b.popLoopEnd()
			return err
		}
	}
	b.popLoopEnd()
	b.emit("JUMP %s", loopLbl)
	b.label(endLbl)
	return nil
}

func (g *Generator) lowerTell(b *builder, locals map[string]bool, args []*ast.Expr) error {
	i := 0
	for i < len(args) {
		a := args[i]
		switch {
		case a.Kind == ast.ExprString:
			id := g.Strings.Add(a.Text, a.Location)
			b.emit("PRINTI STR%d", id)
			i++
		case a.Kind == ast.ExprAtom && (a.Name == "CR" || a.Name == "CRLF"):
			b.emit("CRLF")
			i++
		case a.Kind == ast.ExprAtom && a.Name == "D" && i+1 < len(args):
			v, err := g.lowerExpr(b, locals, args[i+1])
			if err != nil {
				return err
			}
			b.emit("PRINTD %s", v)
			i += 2
		default:
			v, err := g.lowerExpr(b, locals, a)
			if err != nil {
				return err
			}
			b.emit("PRINTR %s", v)
			i++
		}
	}
	return nil
}

func (g *Generator) lowerCall(b *builder, locals map[string]bool, name string, args []*ast.Expr, e *ast.Expr) (string, error) {
	operands, err := g.lowerArgs(b, locals, args)
	if err != nil {
		return "", err
	}

	if mnemonic, ok := lookupMnemonic(name, g.Version); ok {
		return g.emitMnemonic(b, mnemonic, operands), nil
	}

	if isRoutine, known := g.symbolIsRoutine(name); isRoutine || !known {
		holder, _ := g.resultHolder(b)
		if len(operands) == 0 {
			b.emit("CALL %s >%s", name, holder)
		} else {
			b.emit("CALL %s,%s >%s", name, strings.Join(operands, ","), holder)
		}
		return holder, nil
	}

	return "", diag.NewError(diag.InvalidFunction, e.Location, "unknown function: "+name)
}

func (g *Generator) emitMnemonic(b *builder, mnemonic string, operands []string) string {
	holder, _ := g.resultHolder(b)
	if len(operands) == 0 {
		b.emit("%s >%s", mnemonic, holder)
	} else {
		b.emit("%s %s >%s", mnemonic, strings.Join(operands, ","), holder)
	}
	return holder
}
