package zap

import (
	"strconv"
	"strings"

	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/token"
)

// maxLayoutIterations bounds the label-address fixed-point loop; real ZAP
// modules converge in 2-3 passes since only forward branches that sit
// right at the 1-byte/2-byte offset boundary can flip size between runs.
const maxLayoutIterations = 8

// Assemble parses ZAP source text and lowers every instruction line to
// bytes. Label addresses are settled by iterating the sizing pass to a
// fixed point (each round's label addresses feed the next round's branch
// sizing) rather than permanently over-allocating every branch to 2
// bytes, then a final pass emits bytes now that every label resolves.
// baseAddress is where the first instruction byte lands in the final
// story file (routines are packed-address aligned by the caller).
func Assemble(source string, r *Resolver, version int, baseAddress int) ([]byte, error) {
	lines, err := parseAll(source)
	if err != nil {
		return nil, err
	}

	sizes := make([]int, len(lines))
	for iter := 0; iter < maxLayoutIterations; iter++ {
		addr := baseAddress
		changed := false
		for i, inst := range lines {
			if inst.Label != "" {
				r.Labels[inst.Label] = addr
			}
			if inst.Directive == ".STRING" {
				label, data, err := parseStringDirective(inst)
				if err != nil {
					return nil, err
				}
				r.Labels[label] = addr
				if len(data) != sizes[i] {
					changed = true
				}
				sizes[i] = len(data)
				addr += len(data)
				continue
			}
			if inst.Directive != "" || inst.Mnemonic == "" {
				continue
			}
			size, err := CalculateInstructionSize(inst, r, version, addr)
			if err != nil {
				return nil, err
			}
			if size != sizes[i] {
				changed = true
			}
			sizes[i] = size
			addr += size
		}
		if !changed {
			break
		}
	}

	var out []byte
	addr := baseAddress
	for _, inst := range lines {
		if inst.Directive == ".STRING" {
			_, data, err := parseStringDirective(inst)
			if err != nil {
				return nil, err
			}
			out = append(out, data...)
			addr += len(data)
			continue
		}
		if inst.Directive != "" || inst.Mnemonic == "" {
			continue
		}
		bytes, err := EncodeInstruction(inst, r, version, addr)
		if err != nil {
			return nil, err
		}
		out = append(out, bytes...)
		addr += len(bytes)
	}
	return out, nil
}

// parseStringDirective reads a ".STRING NAME \"text\"" directive line,
// as the code generator emits one per pooled literal. The bytes written
// are the literal's raw text plus a single zero terminator; ZSCII
// compression of pooled strings is handled by neither this package nor
// the generator that fills the pool (the pool hands strings down in
// whatever uncompressed form it already holds them).
func parseStringDirective(inst *Instruction) (string, []byte, error) {
	fields := strings.SplitN(inst.Args, " ", 2)
	if len(fields) != 2 {
		return "", nil, diagErr(diag.InvalidInstruction, inst.Location, "malformed .STRING directive: "+inst.Args)
	}
	text, err := strconv.Unquote(strings.TrimSpace(fields[1]))
	if err != nil {
		return "", nil, diagErr(diag.InvalidInstruction, inst.Location, "malformed .STRING literal: "+inst.Args)
	}
	return fields[0], append([]byte(text), 0), nil
}

func parseAll(source string) ([]*Instruction, error) {
	var out []*Instruction
	for i, raw := range strings.Split(source, "\n") {
		loc := token.Location{File: "<zap>", Line: i + 1}
		inst, err := ParseLine(raw, loc)
		if err != nil {
			return nil, err
		}
		if inst == nil {
			continue
		}
		out = append(out, inst)
	}
	return out, nil
}
