package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCompileProducesZapText(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "game.zil")
	if err := os.WriteFile(src, []byte(`<ROUTINE GO () <TELL "hi" CR>>`), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	out := filepath.Join(dir, "game.zap")

	compileOutput, compileVersion, compileOptLvl = out, 5, 1
	defer func() { compileOutput, compileVersion, compileOptLvl = "", 5, 1 }()

	if err := runCompile(compileCmd, []string{src}); err != nil {
		t.Fatalf("runCompile: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(got)
	if !strings.Contains(text, "GO") {
		t.Errorf("expected the GO routine's .FUNCT directive, got:\n%s", text)
	}
	if !strings.Contains(text, "PRINTI") {
		t.Errorf("expected TELL to lower to PRINTI, got:\n%s", text)
	}
}

func TestRunCompileReportsUndefinedSymbol(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.zil")
	if err := os.WriteFile(src, []byte(`<ROUTINE GO () <NO-SUCH-ROUTINE>>`), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	out := filepath.Join(dir, "bad.zap")

	compileOutput, compileVersion, compileOptLvl = out, 5, 1
	defer func() { compileOutput, compileVersion, compileOptLvl = "", 5, 1 }()

	if err := runCompile(compileCmd, []string{src}); err == nil {
		t.Fatalf("expected a semantic-analysis failure for an undefined routine call")
	}
}
