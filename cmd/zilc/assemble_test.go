package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunAssembleProducesStoryFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "game.zap")
	zap := "GO:\tPRINTI STR0\n\tRTRUE\n.STRING STR0 \"hi\"\n"
	if err := os.WriteFile(src, []byte(zap), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	out := filepath.Join(dir, "game.z5")

	assembleOutput, assembleVersion, assembleBaseAddr, assembleEntryAddr = out, 5, 0x40, 0x40
	defer func() { assembleOutput, assembleVersion, assembleBaseAddr, assembleEntryAddr = "a.z5", 5, 0x40, 0x40 }()

	if err := runAssemble(assembleCmd, []string{src}); err != nil {
		t.Fatalf("runAssemble: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(got) < 64 {
		t.Fatalf("expected at least a 64-byte header, got %d bytes", len(got))
	}
	if got[0x00] != 5 {
		t.Errorf("expected version byte 5, got %d", got[0x00])
	}
}
