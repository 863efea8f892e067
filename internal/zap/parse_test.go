package zap

import (
	"testing"

	"github.com/davetcode/zilc/internal/token"
)

func loc() token.Location { return token.Location{File: "t.zap", Line: 1} }

func TestParsePlainInstruction(t *testing.T) {
	inst, err := ParseLine("\tADD 1,2 >TEMP1", loc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Mnemonic != "ADD" || len(inst.Operands) != 2 || inst.Store != "TEMP1" {
		t.Fatalf("unexpected parse: %+v", inst)
	}
}

func TestParseLabelAndInstruction(t *testing.T) {
	inst, err := ParseLine("LOOP:\tJUMP LOOP", loc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Label != "LOOP" || inst.Mnemonic != "JUMP" {
		t.Fatalf("unexpected parse: %+v", inst)
	}
}

func TestParseBranchOperand(t *testing.T) {
	inst, err := ParseLine("\tJZ X /TRUE1", loc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Branch == nil || inst.Branch.Label != "TRUE1" || !inst.Branch.OnTrue {
		t.Fatalf("expected a branch-on-true to TRUE1: %+v", inst)
	}
}

func TestParseDirective(t *testing.T) {
	inst, err := ParseLine(".CONSTANT MAX 10", loc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Directive != ".CONSTANT" || inst.Args != "MAX 10" {
		t.Fatalf("unexpected parse: %+v", inst)
	}
}

func TestParseStripsComments(t *testing.T) {
	inst, err := ParseLine("\tRTRUE ; return true", loc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Mnemonic != "RTRUE" {
		t.Fatalf("expected RTRUE, got %+v", inst)
	}
}

func TestParseBlankLine(t *testing.T) {
	inst, err := ParseLine("   ; just a comment", loc())
	if err != nil || inst != nil {
		t.Fatalf("expected nil, nil for a comment-only line, got %+v, %v", inst, err)
	}
}
