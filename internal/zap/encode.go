package zap

import (
	"strconv"
	"strings"

	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/token"
)

// Resolver answers the symbol questions the encoder needs: where a local
// or global variable lives, what a label's address is, and what a named
// constant's value is.
type Resolver struct {
	Locals    map[string]int // name -> 1..15
	Globals   map[string]int // name -> 16..255
	Labels    map[string]int // label -> byte address
	Constants map[string]int // name -> value
}

func NewResolver() *Resolver {
	return &Resolver{Locals: map[string]int{}, Globals: map[string]int{}, Labels: map[string]int{}, Constants: map[string]int{}}
}

// classified is one operand resolved to a concrete Z-Machine encoding.
type classified struct {
	typ   OperandType
	value uint16
}

func (r *Resolver) classify(op Operand, loc token.Location) (classified, error) {
	text := op.Text
	if text == "STACK" {
		return classified{typ: TypeVariable, value: 0}, nil
	}
	if strings.HasPrefix(text, "'") {
		name := text[1:]
		if n, ok := r.Globals[name]; ok {
			return classified{typ: TypeVariable, value: uint16(n)}, nil
		}
		return classified{}, diagErr(diag.UndefinedLabel, loc, "undefined global variable: "+name)
	}
	if n, ok := r.Locals[text]; ok {
		return classified{typ: TypeVariable, value: uint16(n)}, nil
	}
	if v, ok := parseOperandValue(op); ok {
		return classified(classifyConstant(v)), nil
	}
	if v, ok := r.Constants[text]; ok {
		return classified(classifyConstant(int64(v))), nil
	}
	if addr, ok := r.Labels[text]; ok {
		return classified(classifyConstant(int64(addr))), nil
	}
	return classified{}, diagErr(diag.UndefinedLabel, loc, "unresolved operand: "+text)
}

func classifyConstant(v int64) classified {
	if v >= 0 && v <= 255 {
		return classified{typ: TypeSmall, value: uint16(v)}
	}
	return classified{typ: TypeLarge, value: uint16(uint32(v))}
}

// EncodeInstruction lowers a parsed Instruction into its Z-Machine byte
// encoding, given the address the instruction itself starts at (needed
// for branch-offset math).
func EncodeInstruction(inst *Instruction, r *Resolver, version int, address int) ([]byte, error) {
	info, ok := Lookup(inst.Mnemonic)
	if !ok {
		return nil, diagErr(diag.InvalidInstruction, inst.Location, "unknown opcode mnemonic: "+inst.Mnemonic)
	}
	if info.minVersion > 0 && version < info.minVersion {
		return nil, diagErr(diag.VersionMismatch, inst.Location, inst.Mnemonic+" requires version "+strconv.Itoa(info.minVersion)+" or later")
	}

	operands := make([]classified, len(inst.Operands))
	for i, op := range inst.Operands {
		c, err := r.classify(op, inst.Location)
		if err != nil {
			return nil, err
		}
		operands[i] = c
	}

	var out []byte
	switch info.count {
	case Count0:
		out = append(out, 0b1011_0000|info.number)
	case Count1:
		if len(operands) != 1 {
			return nil, diagErr(diag.InvalidOperand, inst.Location, inst.Mnemonic+" requires exactly one operand")
		}
		out = append(out, 0b1000_0000|(uint8(operands[0].typ)<<4)|info.number)
		out = append(out, encodeOperandBytes(operands[0])...)
	case Count2:
		if len(operands) != 2 {
			return nil, diagErr(diag.InvalidOperand, inst.Location, inst.Mnemonic+" requires exactly two operands")
		}
		if operands[0].typ == TypeLarge || operands[1].typ == TypeLarge {
			// A large constant forces the VAR-form 2OP re-encoding.
			out = append(out, 0b1100_0000|info.number)
			out = append(out, packOperandTypeByte(operands))
			for _, o := range operands {
				out = append(out, encodeOperandBytes(o)...)
			}
		} else {
			byteVal := uint8(0)
			if operands[0].typ == TypeVariable {
				byteVal |= 1 << 6
			}
			if operands[1].typ == TypeVariable {
				byteVal |= 1 << 5
			}
			out = append(out, byteVal|info.number)
			out = append(out, encodeOperandBytes(operands[0])...)
			out = append(out, encodeOperandBytes(operands[1])...)
		}
	case CountVar:
		out = append(out, 0b1110_0000|info.number)
		out = append(out, packOperandTypeByte(operands))
		for _, o := range operands {
			out = append(out, encodeOperandBytes(o)...)
		}
	}

	if info.hasStore {
		v, err := storeVariableNumber(inst.Store, r, inst.Location)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(v))
	}

	if info.hasBranch {
		if inst.Branch == nil {
			return nil, diagErr(diag.BranchTargetError, inst.Location, inst.Mnemonic+" requires a branch target")
		}
		branchBytes, err := encodeBranch(inst.Branch, r, address, len(out))
		if err != nil {
			return nil, err
		}
		out = append(out, branchBytes...)
	}

	return out, nil
}

func storeVariableNumber(name string, r *Resolver, loc token.Location) (int, error) {
	if name == "STACK" {
		return 0, nil
	}
	if n, ok := r.Locals[name]; ok {
		return n, nil
	}
	if n, ok := r.Globals[strings.TrimPrefix(name, "'")]; ok {
		return n, nil
	}
	return 0, diagErr(diag.UndefinedLabel, loc, "unresolved result variable: "+name)
}

// packOperandTypeByte packs up to four operand types (00/01/10/11) into
// one byte at bit positions 6,4,2,0, padding unused slots with omitted.
func packOperandTypeByte(operands []classified) byte {
	var b byte
	for i := 0; i < 4; i++ {
		t := TypeOmitted
		if i < len(operands) {
			t = operands[i].typ
		}
		b |= byte(t) << uint(6-2*i)
	}
	return b
}

func encodeOperandBytes(c classified) []byte {
	switch c.typ {
	case TypeLarge:
		return []byte{byte(c.value >> 8), byte(c.value)}
	default: // small constant or variable, both single-byte
		return []byte{byte(c.value)}
	}
}

// encodeBranch computes the branch offset and its 1- or 2-byte encoding.
// bytesSoFar is how many bytes of this instruction (opcode+operands+
// store) precede the branch bytes, used to finish computing the
// instruction's total length for the offset formula.
func encodeBranch(b *BranchTarget, r *Resolver, address int, bytesSoFar int) ([]byte, error) {
	if b.Label == "RTRUE" {
		return []byte{0b1000_0000 | flagBit(b.OnTrue) | 1}, nil
	}
	if b.Label == "RFALSE" {
		return []byte{0b1000_0000 | flagBit(b.OnTrue)}, nil
	}
	target, ok := r.Labels[b.Label]
	if !ok {
		// Unresolved symbol: emit a 2-byte placeholder for a later
		// resolution pass.
		return []byte{flagBit(b.OnTrue), 0}, nil
	}
	offset := target - (address + bytesSoFar + 2)
	if offset < -8192 || offset > 8191 {
		return nil, diagErr(diag.BranchTargetOutOfRange, token.Location{}, "branch offset out of range")
	}
	if offset >= -32 && offset <= 31 {
		v := uint8(offset & 0b0011_1111)
		return []byte{0b1000_0000 | flagBit(b.OnTrue) | v}, nil
	}
	u := uint16(offset & 0b0011_1111_1111_1111)
	first := flagBit(b.OnTrue) | byte(u>>8)
	second := byte(u)
	return []byte{first, second}, nil
}

func flagBit(onTrue bool) byte {
	if onTrue {
		return 0b0100_0000
	}
	return 0
}

// CalculateInstructionSize replicates EncodeInstruction's byte count for
// an instruction starting at address, classifying operands the same way
// but counting any that do not resolve yet as one byte instead of
// failing. address may be approximate for a label
// that hasn't converged yet; the caller re-runs this across a
// fixed-point loop (see Assemble) so a branch that initially guesses 2
// bytes can shrink to 1 once surrounding addresses settle.
func CalculateInstructionSize(inst *Instruction, r *Resolver, version int, address ...int) (int, error) {
	info, ok := Lookup(inst.Mnemonic)
	if !ok {
		return 0, diagErr(diag.InvalidInstruction, inst.Location, "unknown opcode mnemonic: "+inst.Mnemonic)
	}
	size := 1
	switch info.count {
	case Count0:
	case Count1:
		size += operandSizeGuess(inst.Operands, r, 0)
	case Count2:
		allSmallOrVar := true
		for _, op := range inst.Operands {
			c, err := r.classify(op, inst.Location)
			if err == nil && c.typ == TypeLarge {
				allSmallOrVar = false
			}
		}
		if !allSmallOrVar {
			size++ // operand-type byte for the VAR 2OP re-encoding
		}
		size += operandSizeGuess(inst.Operands, r, 0)
	case CountVar:
		size++ // operand-type byte
		size += operandSizeGuess(inst.Operands, r, 0)
	}
	if info.hasStore {
		size++
	}
	if info.hasBranch {
		size += branchSizeGuess(inst.Branch, r, size, address)
	}
	return size, nil
}

// branchSizeGuess estimates a branch's encoded byte count. With a known
// instruction address and a resolved label it computes the real offset
// and picks 1 or 2 bytes accordingly (matching encodeBranch); otherwise
// it conservatively guesses 2.
func branchSizeGuess(b *BranchTarget, r *Resolver, bytesSoFar int, address []int) int {
	if b.Label == "RTRUE" || b.Label == "RFALSE" {
		return 1
	}
	target, ok := r.Labels[b.Label]
	if !ok || len(address) == 0 {
		return 2
	}
	offset := target - (address[0] + bytesSoFar + 2)
	if offset >= -32 && offset <= 31 {
		return 1
	}
	return 2
}

func operandSizeGuess(operands []Operand, r *Resolver, _ int) int {
	n := 0
	for _, op := range operands {
		c, err := r.classify(op, token.Location{})
		if err == nil && c.typ == TypeLarge {
			n += 2
		} else {
			n++
		}
	}
	return n
}
