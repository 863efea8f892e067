package macro

import (
	"strings"

	"github.com/davetcode/zilc/internal/ast"
	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/token"
)

// Result is the outcome of evaluating an expression at compile time:
// exactly one of Expr/Err is meaningful, or NotEvaluable is set, which is
// a soft outcome that leaves the expression textually expanded rather
// than failing the compilation.
type Result struct {
	Expr         *ast.Expr
	Err          error
	NotEvaluable bool
}

func success(e *ast.Expr) Result { return Result{Expr: e} }
func failure(err error) Result   { return Result{Err: err} }
func notEvaluable() Result       { return Result{NotEvaluable: true} }

// Evaluator evaluates a restricted subset of ZIL expressions (arithmetic,
// comparison, logic, control flow, string/list ops, and constant lookup)
// entirely at compile time, for use inside <EVAL ...>.
type Evaluator struct {
	// Constants resolves identifier lookups against a compile-time
	// constant table.
	Constants map[string]*ast.Expr
}

// NewEvaluator returns an Evaluator over the given constant table (may be
// nil, treated as empty).
func NewEvaluator(constants map[string]*ast.Expr) *Evaluator {
	if constants == nil {
		constants = map[string]*ast.Expr{}
	}
	return &Evaluator{Constants: constants}
}

// Eval evaluates e, dispatching on the head atom's uppercase text. Eval is
// pure: the same expression against the same constant table always
// produces the same outcome.
func (ev *Evaluator) Eval(e *ast.Expr) Result {
	if e == nil {
		return notEvaluable()
	}
	switch e.Kind {
	case ast.ExprNumber, ast.ExprString:
		return success(e)
	case ast.ExprAtom:
		if v, ok := ev.Constants[e.Name]; ok {
			return success(v)
		}
		if e.Name == "T" || e.Name == "FALSE" {
			return success(e)
		}
		return notEvaluable()
	case ast.ExprList:
		return ev.evalList(e)
	default:
		return notEvaluable()
	}
}

func (ev *Evaluator) evalList(e *ast.Expr) Result {
	head := e.Head()
	if head == nil || head.Kind != ast.ExprAtom {
		return notEvaluable()
	}
	args := e.Args()
	loc := e.Location
	switch strings.ToUpper(head.Name) {
	case "+", "-", "*", "/", "MOD":
		return ev.evalArith(loc, strings.ToUpper(head.Name), args)
	case "=", "<", ">", "<=", ">=":
		return ev.evalCompare(loc, strings.ToUpper(head.Name), args)
	case "AND":
		return ev.evalAnd(args)
	case "OR":
		return ev.evalOr(args)
	case "NOT":
		return ev.evalNot(args)
	case "COND":
		return ev.evalCond(args)
	case "IF":
		return ev.evalIf(loc, args)
	case "LENGTH":
		return ev.evalLength(loc, args)
	case "NTH":
		return ev.evalNth(loc, args)
	case "REST":
		return ev.evalRest(loc, args)
	case "SUBSTRING":
		return ev.evalSubstring(loc, args)
	case "STRING-CONCAT":
		return ev.evalStringConcat(loc, args)
	case "STRING-LENGTH":
		return ev.evalStringLength(loc, args)
	case "STRING-UPPER":
		return ev.evalStringCase(loc, args, strings.ToUpper)
	case "STRING-LOWER":
		return ev.evalStringCase(loc, args, strings.ToLower)
	case "STRING-INDEX":
		return ev.evalStringIndex(loc, args)
	default:
		return notEvaluable()
	}
}

func (ev *Evaluator) evalAll(args []*ast.Expr) ([]*ast.Expr, *Result) {
	out := make([]*ast.Expr, len(args))
	for i, a := range args {
		r := ev.Eval(a)
		if r.Err != nil || r.NotEvaluable {
			return nil, &r
		}
		out[i] = r.Expr
	}
	return out, nil
}

func asNumber(e *ast.Expr) (int16, bool) {
	if e != nil && e.Kind == ast.ExprNumber {
		return e.Number, true
	}
	return 0, false
}

func asString(e *ast.Expr) (string, bool) {
	if e != nil && e.Kind == ast.ExprString {
		return e.Text, true
	}
	return "", false
}

func numberExpr(n int16) *ast.Expr { return &ast.Expr{Kind: ast.ExprNumber, Number: n} }

func boolExpr(b bool) *ast.Expr {
	if b {
		return numberExpr(1)
	}
	return numberExpr(0)
}

// truthy implements ZIL's truthiness rules: number != 0, non-empty
// string, non-empty/non-FALSE atom, non-empty list.
func truthy(e *ast.Expr) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ast.ExprNumber:
		return e.Number != 0
	case ast.ExprString:
		return e.Text != ""
	case ast.ExprAtom:
		return e.Name != "" && e.Name != "FALSE"
	case ast.ExprList, ast.ExprTable:
		return len(e.Children) > 0
	default:
		return true
	}
}

func (ev *Evaluator) evalArith(loc token.Location, op string, args []*ast.Expr) Result {
	vals, bad := ev.evalAll(args)
	if bad != nil {
		return *bad
	}
	if len(vals) == 0 {
		return failure(diag.NewError(diag.EvalError, loc, op+" requires at least one operand"))
	}
	nums := make([]int16, len(vals))
	for i, v := range vals {
		n, ok := asNumber(v)
		if !ok {
			return failure(diag.NewError(diag.EvalError, loc, "arithmetic operand is not a number"))
		}
		nums[i] = n
	}
	acc := nums[0]
	if op == "-" && len(nums) == 1 {
		return success(numberExpr(-acc))
	}
	for _, n := range nums[1:] {
		switch op {
		case "+":
			acc = int16(uint16(acc) + uint16(n))
		case "-":
			acc = int16(uint16(acc) - uint16(n))
		case "*":
			acc = int16(uint16(acc) * uint16(n))
		case "/":
			if n == 0 {
				return failure(diag.NewError(diag.EvalError, loc, "division by zero"))
			}
			acc = acc / n
		case "MOD":
			if n == 0 {
				return failure(diag.NewError(diag.EvalError, loc, "modulo by zero"))
			}
			acc = acc % n
		}
	}
	return success(numberExpr(acc))
}

func (ev *Evaluator) evalCompare(loc token.Location, op string, args []*ast.Expr) Result {
	vals, bad := ev.evalAll(args)
	if bad != nil {
		return *bad
	}
	if len(vals) != 2 {
		return failure(diag.NewError(diag.EvalError, loc, op+" requires exactly two operands"))
	}
	a, b := vals[0], vals[1]

	if an, aok := asNumber(a); aok {
		bn, bok := asNumber(b)
		if !bok {
			return failure(diag.NewError(diag.EvalError, loc, "cannot compare a number with a non-number"))
		}
		return success(boolExpr(compareOrdered(op, int(an), int(bn))))
	}
	if as, aok := asString(a); aok {
		bs, bok := asString(b)
		if !bok {
			return failure(diag.NewError(diag.EvalError, loc, "cannot compare a string with a non-string"))
		}
		return success(boolExpr(compareOrdered(op, strings.Compare(as, bs), 0)))
	}
	if a.Kind == ast.ExprAtom && b.Kind == ast.ExprAtom {
		if op != "=" {
			return failure(diag.NewError(diag.EvalError, loc, "atoms only support '=' comparison"))
		}
		return success(boolExpr(a.Name == b.Name))
	}
	return failure(diag.NewError(diag.EvalError, loc, "incompatible operand types for "+op))
}

func compareOrdered(op string, a, b int) bool {
	switch op {
	case "=":
		return a == b
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func (ev *Evaluator) evalAnd(args []*ast.Expr) Result {
	var last *ast.Expr = numberExpr(1)
	for _, a := range args {
		r := ev.Eval(a)
		if r.Err != nil || r.NotEvaluable {
			return r
		}
		if !truthy(r.Expr) {
			return success(boolExpr(false))
		}
		last = r.Expr
	}
	return success(last)
}

func (ev *Evaluator) evalOr(args []*ast.Expr) Result {
	for _, a := range args {
		r := ev.Eval(a)
		if r.Err != nil || r.NotEvaluable {
			return r
		}
		if truthy(r.Expr) {
			return success(r.Expr)
		}
	}
	return success(boolExpr(false))
}

func (ev *Evaluator) evalNot(args []*ast.Expr) Result {
	if len(args) != 1 {
		return failure(diag.NewError(diag.EvalError, token.Location{}, "NOT requires exactly one operand"))
	}
	r := ev.Eval(args[0])
	if r.Err != nil || r.NotEvaluable {
		return r
	}
	return success(boolExpr(!truthy(r.Expr)))
}

// evalCond evaluates COND's (cond result) pairs, expressed here as a flat
// arg list of List{cond, result} clauses; default is 0.
func (ev *Evaluator) evalCond(args []*ast.Expr) Result {
	for _, clause := range args {
		if clause.Kind != ast.ExprList || len(clause.Children) < 1 {
			return failure(diag.NewError(diag.EvalError, clause.Location, "COND clause must be a (condition result) list"))
		}
		cr := ev.Eval(clause.Children[0])
		if cr.Err != nil {
			return cr
		}
		if cr.NotEvaluable {
			return cr
		}
		if truthy(cr.Expr) {
			if len(clause.Children) == 1 {
				return success(cr.Expr)
			}
			return ev.Eval(clause.Children[1])
		}
	}
	return success(numberExpr(0))
}

func (ev *Evaluator) evalIf(loc token.Location, args []*ast.Expr) Result {
	if len(args) != 2 && len(args) != 3 {
		return failure(diag.NewError(diag.EvalError, loc, "IF requires 2 or 3 arguments"))
	}
	cond := ev.Eval(args[0])
	if cond.Err != nil || cond.NotEvaluable {
		return cond
	}
	if truthy(cond.Expr) {
		return ev.Eval(args[1])
	}
	if len(args) == 3 {
		return ev.Eval(args[2])
	}
	return success(numberExpr(0))
}

func listElements(e *ast.Expr) ([]*ast.Expr, bool) {
	if e == nil {
		return nil, false
	}
	switch e.Kind {
	case ast.ExprList, ast.ExprTable:
		return e.Children, true
	case ast.ExprString:
		out := make([]*ast.Expr, 0, len(e.Text))
		for _, r := range e.Text {
			out = append(out, &ast.Expr{Kind: ast.ExprString, Text: string(r)})
		}
		return out, true
	}
	return nil, false
}

func (ev *Evaluator) evalLength(loc token.Location, args []*ast.Expr) Result {
	if len(args) != 1 {
		return failure(diag.NewError(diag.EvalError, loc, "LENGTH requires exactly one operand"))
	}
	v := ev.Eval(args[0])
	if v.Err != nil || v.NotEvaluable {
		return v
	}
	els, ok := listElements(v.Expr)
	if !ok {
		return failure(diag.NewError(diag.EvalError, loc, "LENGTH requires a list or string"))
	}
	return success(numberExpr(int16(len(els))))
}

func (ev *Evaluator) evalNth(loc token.Location, args []*ast.Expr) Result {
	if len(args) != 2 {
		return failure(diag.NewError(diag.EvalError, loc, "NTH requires exactly two operands"))
	}
	lst := ev.Eval(args[0])
	if lst.Err != nil || lst.NotEvaluable {
		return lst
	}
	idxv := ev.Eval(args[1])
	if idxv.Err != nil || idxv.NotEvaluable {
		return idxv
	}
	idx, ok := asNumber(idxv.Expr)
	if !ok {
		return failure(diag.NewError(diag.EvalError, loc, "NTH index must be a number"))
	}
	els, ok := listElements(lst.Expr)
	if !ok {
		return failure(diag.NewError(diag.EvalError, loc, "NTH requires a list or string"))
	}
	if idx < 1 || int(idx) > len(els) {
		return failure(diag.NewError(diag.EvalError, loc, "NTH index out of range"))
	}
	return success(els[idx-1])
}

func (ev *Evaluator) evalRest(loc token.Location, args []*ast.Expr) Result {
	if len(args) < 1 || len(args) > 2 {
		return failure(diag.NewError(diag.EvalError, loc, "REST requires one or two operands"))
	}
	v := ev.Eval(args[0])
	if v.Err != nil || v.NotEvaluable {
		return v
	}
	skip := int16(1)
	if len(args) == 2 {
		sv := ev.Eval(args[1])
		if sv.Err != nil || sv.NotEvaluable {
			return sv
		}
		n, ok := asNumber(sv.Expr)
		if !ok {
			return failure(diag.NewError(diag.EvalError, loc, "REST skip count must be a number"))
		}
		skip = n
	}
	if s, ok := asString(v.Expr); ok {
		if int(skip) > len(s) {
			return success(&ast.Expr{Kind: ast.ExprString, Text: ""})
		}
		return success(&ast.Expr{Kind: ast.ExprString, Text: s[skip:]})
	}
	els, ok := listElements(v.Expr)
	if !ok {
		return failure(diag.NewError(diag.EvalError, loc, "REST requires a list or string"))
	}
	if int(skip) > len(els) {
		return success(&ast.Expr{Kind: ast.ExprList})
	}
	return success(&ast.Expr{Kind: ast.ExprList, Children: els[skip:]})
}

func (ev *Evaluator) evalSubstring(loc token.Location, args []*ast.Expr) Result {
	if len(args) != 3 {
		return failure(diag.NewError(diag.EvalError, loc, "SUBSTRING requires exactly three operands"))
	}
	vals, bad := ev.evalAll(args)
	if bad != nil {
		return *bad
	}
	s, ok := asString(vals[0])
	if !ok {
		return failure(diag.NewError(diag.EvalError, loc, "SUBSTRING requires a string first operand"))
	}
	start, ok1 := asNumber(vals[1])
	length, ok2 := asNumber(vals[2])
	if !ok1 || !ok2 {
		return failure(diag.NewError(diag.EvalError, loc, "SUBSTRING bounds must be numbers"))
	}
	from := int(start)
	to := from + int(length)
	if from < 0 || to > len(s) || from > to {
		return failure(diag.NewError(diag.EvalError, loc, "SUBSTRING bounds out of range"))
	}
	return success(&ast.Expr{Kind: ast.ExprString, Text: s[from:to]})
}

func (ev *Evaluator) evalStringConcat(loc token.Location, args []*ast.Expr) Result {
	vals, bad := ev.evalAll(args)
	if bad != nil {
		return *bad
	}
	var b strings.Builder
	for _, v := range vals {
		s, ok := asString(v)
		if !ok {
			return failure(diag.NewError(diag.EvalError, loc, "STRING-CONCAT requires string operands"))
		}
		b.WriteString(s)
	}
	return success(&ast.Expr{Kind: ast.ExprString, Text: b.String()})
}

func (ev *Evaluator) evalStringLength(loc token.Location, args []*ast.Expr) Result {
	if len(args) != 1 {
		return failure(diag.NewError(diag.EvalError, loc, "STRING-LENGTH requires exactly one operand"))
	}
	v := ev.Eval(args[0])
	if v.Err != nil || v.NotEvaluable {
		return v
	}
	s, ok := asString(v.Expr)
	if !ok {
		return failure(diag.NewError(diag.EvalError, loc, "STRING-LENGTH requires a string operand"))
	}
	return success(numberExpr(int16(len(s))))
}

func (ev *Evaluator) evalStringCase(loc token.Location, args []*ast.Expr, transform func(string) string) Result {
	if len(args) != 1 {
		return failure(diag.NewError(diag.EvalError, loc, "string case operator requires exactly one operand"))
	}
	v := ev.Eval(args[0])
	if v.Err != nil || v.NotEvaluable {
		return v
	}
	s, ok := asString(v.Expr)
	if !ok {
		return failure(diag.NewError(diag.EvalError, loc, "string case operator requires a string operand"))
	}
	return success(&ast.Expr{Kind: ast.ExprString, Text: transform(s)})
}

func (ev *Evaluator) evalStringIndex(loc token.Location, args []*ast.Expr) Result {
	if len(args) != 2 {
		return failure(diag.NewError(diag.EvalError, loc, "STRING-INDEX requires exactly two operands"))
	}
	vals, bad := ev.evalAll(args)
	if bad != nil {
		return *bad
	}
	haystack, ok1 := asString(vals[0])
	needle, ok2 := asString(vals[1])
	if !ok1 || !ok2 {
		return failure(diag.NewError(diag.EvalError, loc, "STRING-INDEX requires string operands"))
	}
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return success(boolExpr(false))
	}
	return success(numberExpr(int16(idx + 1)))
}
