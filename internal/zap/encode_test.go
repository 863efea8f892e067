package zap

import (
	"bytes"
	"testing"
)

func TestEncodeAddSmallConstants(t *testing.T) {
	r := NewResolver()
	inst, err := ParseLine("\tADD 1,2 >TEMP1", loc())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r.Locals["TEMP1"] = 1
	got, err := EncodeInstruction(inst, r, 5, 0x1000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// 2OP long form: both operands small constants, opcode 20 (ADD)
	want := []byte{20, 1, 2, 1}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % 08b, want % 08b", got, want)
	}
}

func TestEncodeJzShortOffsetBranch(t *testing.T) {
	r := NewResolver()
	r.Locals["X"] = 1
	r.Labels["TRUE1"] = 0x1005
	inst, err := ParseLine("\tJZ X /TRUE1", loc())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := EncodeInstruction(inst, r, 5, 0x1000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(b) != 3 {
		t.Fatalf("expected opcode+operand+1-byte branch, got % 08b", b)
	}
	if b[2]&0b1000_0000 == 0 {
		t.Fatalf("expected single-byte branch form bit set, got %08b", b[2])
	}
	if b[2]&0b0100_0000 == 0 {
		t.Fatalf("expected branch-on-true bit set, got %08b", b[2])
	}
}

func TestEncodeVarFormCall(t *testing.T) {
	r := NewResolver()
	r.Constants["GO"] = 0x2000 / 2
	r.Locals["RESULT"] = 1
	inst, err := ParseLine("\tCALL GO,1,2 >RESULT", loc())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := EncodeInstruction(inst, r, 5, 0x1000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if b[0] != (0b1110_0000 | 0) {
		t.Fatalf("expected VAR-form CALL opcode byte, got %08b", b[0])
	}
}

func TestEncodeLargeConstantForces2OPVarReencode(t *testing.T) {
	r := NewResolver()
	r.Locals["TEMP1"] = 1
	inst, err := ParseLine("\tADD 1000,2 >TEMP1", loc())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := EncodeInstruction(inst, r, 5, 0x1000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if b[0] != (0b1100_0000 | 20) {
		t.Fatalf("expected VAR-form re-encoding of ADD, got %08b", b[0])
	}
}

func TestEncodeRejectsVersionTooLow(t *testing.T) {
	r := NewResolver()
	inst, err := ParseLine("\tCALL_VN2 1", loc())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := EncodeInstruction(inst, r, 3, 0x1000); err == nil {
		t.Fatalf("expected a version-mismatch error for CALL_VN2 at version 3")
	}
}

func TestCalculateInstructionSizeMatchesEncodedLength(t *testing.T) {
	r := NewResolver()
	r.Locals["TEMP1"] = 1
	inst, err := ParseLine("\tADD 1,2 >TEMP1", loc())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	size, err := CalculateInstructionSize(inst, r, 5)
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	encoded, err := EncodeInstruction(inst, r, 5, 0x1000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if size != len(encoded) {
		t.Fatalf("size %d != encoded length %d", size, len(encoded))
	}
}
