package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders an expression back to ZIL source text. Reparsing the
// output yields an equal AST modulo whitespace and comments, and it
// follows ZAP text's own "one token, one space" formatting convention
// rather than inventing a separate style.
func Print(e *Expr) string {
	var b strings.Builder
	printExpr(&b, e)
	return b.String()
}

func printExpr(b *strings.Builder, e *Expr) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ExprAtom:
		b.WriteString(e.Name)
	case ExprNumber:
		b.WriteString(strconv.Itoa(int(e.Number)))
	case ExprString:
		b.WriteByte('"')
		b.WriteString(escapeString(e.Text))
		b.WriteByte('"')
	case ExprGlobalVariable:
		b.WriteByte(',')
		b.WriteString(e.Name)
	case ExprLocalVariable:
		b.WriteByte('.')
		b.WriteString(e.Name)
	case ExprPropertyReference:
		b.WriteString("P?")
		b.WriteString(e.Name)
	case ExprFlagReference:
		b.WriteString("F?")
		b.WriteString(e.Name)
	case ExprIndirection:
		b.WriteByte('!')
		if len(e.Children) == 1 {
			printExpr(b, e.Children[0])
		}
	case ExprList:
		open, close := "<", ">"
		if !e.Angle {
			open, close = "(", ")"
		}
		b.WriteString(open)
		for i, c := range e.Children {
			if i > 0 {
				b.WriteByte(' ')
			}
			printExpr(b, c)
		}
		b.WriteString(close)
	case ExprTable:
		b.WriteByte('<')
		b.WriteString(e.TableKind.String())
		for _, c := range e.Children {
			b.WriteByte(' ')
			printExpr(b, c)
		}
		b.WriteByte('>')
	default:
		fmt.Fprintf(b, "<?unknown-expr-kind-%d?>", e.Kind)
	}
}

func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
