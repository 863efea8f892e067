package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davetcode/zilc/internal/codegen"
	"github.com/davetcode/zilc/internal/diag"
	"github.com/davetcode/zilc/internal/macro"
	"github.com/davetcode/zilc/internal/parser"
	"github.com/davetcode/zilc/internal/symtab"
	"github.com/davetcode/zilc/internal/token"
)

var (
	compileOutput  string
	compileVersion int
	compileOptLvl  int
)

var compileCmd = &cobra.Command{
	Use:   "compile [source.zil]",
	Short: "Compile ZIL source to ZAP assembly text",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file (default: stdout)")
	compileCmd.Flags().IntVar(&compileVersion, "version", 5, "target Z-Machine version")
	compileCmd.Flags().IntVar(&compileOptLvl, "opt", 1, "optimization level (0 = debug output, 1 = production)")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	decls, err := parser.ParseFile(args[0])
	if err != nil {
		renderDiagnostics([]diag.Diagnostic{toDiagnostic(err)})
		return fmt.Errorf("parse failed")
	}

	proc := macro.NewProcessor()
	decls, err = macro.ExpandProgram(decls, proc)
	if err != nil {
		renderDiagnostics([]diag.Diagnostic{toDiagnostic(err)})
		return fmt.Errorf("macro expansion failed")
	}

	analyzer := symtab.NewAnalyzer()
	collector := analyzer.Analyze(decls)
	renderDiagnostics(collector.All())
	if collector.HasErrors() {
		return fmt.Errorf("semantic analysis failed")
	}

	zapText, err := codegen.Generate(decls, codegen.Options{Version: compileVersion, OptLevel: compileOptLvl}, analyzer.Table)
	if err != nil {
		renderDiagnostics([]diag.Diagnostic{toDiagnostic(err)})
		return fmt.Errorf("code generation failed")
	}

	if compileOutput == "" {
		fmt.Print(zapText)
		return nil
	}
	return os.WriteFile(compileOutput, []byte(zapText), 0o644)
}

func toDiagnostic(err error) diag.Diagnostic {
	if d, ok := err.(diag.Diagnostic); ok {
		return d
	}
	return diag.NewError(diag.InvalidSyntax, token.Location{}, err.Error())
}
