package zap

import (
	"strconv"
	"strings"

	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/token"
)

// Operand is one parsed operand, not yet classified into a Z-Machine
// OperandType (that happens at encode time, once the value's size is
// known for large-vs-small constants).
type Operand struct {
	Text string // raw operand text, e.g. "5", "'SCORE", "STACK", "STR3"
}

// BranchTarget records a branch-prefixed operand: "/LABEL" (branch when
// the condition is true) or "\LABEL" (branch when false).
type BranchTarget struct {
	Label  string
	OnTrue bool
}

// Instruction is one parsed ZAP line. Directive lines populate Directive
// and leave Mnemonic empty.
type Instruction struct {
	Label     string
	Mnemonic  string
	Operands  []Operand
	Store     string // variable name/number the result is stored to, "" if none
	Branch    *BranchTarget
	Directive string // e.g. ".FUNCT", "" for a plain instruction line
	Args      string // raw remainder for a directive line
	Location  token.Location
}

// ParseLine parses one line of ZAP text. Blank lines and comment-only
// lines return (nil, nil).
func ParseLine(raw string, loc token.Location) (*Instruction, error) {
	line := stripComment(raw)
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	inst := &Instruction{Location: loc}
	if idx := strings.Index(line, ":"); idx >= 0 && !strings.ContainsAny(line[:idx], " \t") {
		inst.Label = line[:idx]
		line = strings.TrimSpace(line[idx+1:])
		if line == "" {
			return inst, nil
		}
	}

	if strings.HasPrefix(line, ".") {
		fields := strings.Fields(line)
		inst.Directive = fields[0]
		inst.Args = strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		return inst, nil
	}

	fields := splitInstructionLine(line)
	if len(fields) == 0 {
		return inst, nil
	}
	inst.Mnemonic = strings.ToUpper(fields[0])

	operandTexts := splitOperands(strings.Join(fields[1:], " "))
	for i, raw := range operandTexts {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		last := i == len(operandTexts)-1
		switch {
		case strings.HasPrefix(raw, "/"):
			inst.Branch = &BranchTarget{Label: raw[1:], OnTrue: true}
		case strings.HasPrefix(raw, "\\"):
			inst.Branch = &BranchTarget{Label: raw[1:], OnTrue: false}
		case strings.HasPrefix(raw, ">"):
			inst.Store = raw[1:]
		default:
			if last && (strings.Contains(raw, "/") || strings.Contains(raw, "\\") || strings.Contains(raw, ">")) {
				// A branch/store prefix glued onto the final operand
				// without a separating space, e.g. "JZ X/LABEL".
				base, suffix := splitTrailingPrefix(raw)
				if base != "" {
					inst.Operands = append(inst.Operands, Operand{Text: base})
				}
				applySuffix(inst, suffix)
				continue
			}
			inst.Operands = append(inst.Operands, Operand{Text: raw})
		}
	}
	return inst, nil
}

func applySuffix(inst *Instruction, suffix string) {
	switch {
	case strings.HasPrefix(suffix, "/"):
		inst.Branch = &BranchTarget{Label: suffix[1:], OnTrue: true}
	case strings.HasPrefix(suffix, "\\"):
		inst.Branch = &BranchTarget{Label: suffix[1:], OnTrue: false}
	case strings.HasPrefix(suffix, ">"):
		inst.Store = suffix[1:]
	}
}

// splitTrailingPrefix splits "VALUE/LABEL" style text into its value and
// the suffix starting at the prefix character.
func splitTrailingPrefix(s string) (string, string) {
	for i, c := range s {
		if c == '/' || c == '\\' || c == '>' {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func stripComment(s string) string {
	inQuote := false
	for i, c := range s {
		if c == '"' {
			inQuote = !inQuote
		}
		if c == ';' && !inQuote {
			return s[:i]
		}
	}
	return s
}

// splitInstructionLine separates the mnemonic from its operand text,
// tab- or space-delimited.
func splitInstructionLine(line string) []string {
	parts := strings.SplitN(line, "\t", 2)
	if len(parts) == 1 {
		parts = strings.SplitN(line, " ", 2)
	}
	if len(parts) == 1 {
		return []string{parts[0]}
	}
	return []string{parts[0], parts[1]}
}

// splitOperands splits an operand list on commas and/or whitespace,
// preserving quoted strings so a literal comma or space inside one
// doesn't split it.
func splitOperands(s string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, c := range s {
		switch {
		case c == '"':
			inQuote = !inQuote
			cur.WriteRune(c)
		case (c == ',' || c == ' ' || c == '\t') && !inQuote:
			flush()
		default:
			cur.WriteRune(c)
		}
	}
	flush()
	return out
}

// parseOperandValue resolves op's literal numeric value, if it has one
// (a plain decimal integer). Symbolic operands ('NAME, STACK, a local
// variable name) return ok=false; the encoder resolves those separately.
func parseOperandValue(op Operand) (int64, bool) {
	v, err := strconv.ParseInt(op.Text, 10, 32)
	if err != nil {
		return 0, false
	}
	return v, true
}

// diagErr is a small convenience wrapper so parse/encode errors share one
// diagnostic shape.
func diagErr(code diag.Code, loc token.Location, msg string) error {
	return diag.NewError(code, loc, msg)
}
