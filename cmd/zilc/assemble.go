package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/story"
	"github.com/davetcode/zilc/internal/zap"
)

var (
	assembleOutput    string
	assembleVersion   int
	assembleBaseAddr  int
	assembleEntryAddr int
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [source.zap]",
	Short: "Assemble ZAP text into Z-Machine story-file bytes",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssemble,
}

func init() {
	assembleCmd.Flags().StringVarP(&assembleOutput, "output", "o", "a.z5", "output story file")
	assembleCmd.Flags().IntVar(&assembleVersion, "version", 5, "target Z-Machine version")
	assembleCmd.Flags().IntVar(&assembleBaseAddr, "base", 0x40, "byte address the first routine is assembled at")
	assembleCmd.Flags().IntVar(&assembleEntryAddr, "entry", 0x40, "initial PC (byte address of the first instruction to run)")
	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	resolver := zap.NewResolver()
	routineBytes, err := zap.Assemble(string(src), resolver, assembleVersion, assembleBaseAddr)
	if err != nil {
		renderDiagnostics([]diag.Diagnostic{toDiagnostic(err)})
		return fmt.Errorf("assembly failed")
	}

	file := story.Assemble(story.Options{
		Version:   uint8(assembleVersion),
		InitialPC: uint16(assembleEntryAddr),
	}, story.Regions{
		Globals:  make([]byte, 480), // variables 16-255, zero-initialized
		Routines: routineBytes,
	})

	return os.WriteFile(assembleOutput, file, 0o644)
}
