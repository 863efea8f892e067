// Command zilc drives the compilation core end to end: zilc compile runs
// ZIL source through the lexer, parser, macro expander, semantic
// analyzer and ZAP code generator; zilc assemble runs ZAP text through
// the instruction encoder and story-file writer. Neither subcommand runs
// the resulting story file - that remains the job of a separate
// Z-Machine interpreter.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zilc",
	Short: "ZIL compilation core: zilc compile | zilc assemble",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
