package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/davetcode/zilc/internal/diag"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	contextStyle = lipgloss.NewStyle().Faint(true)
)

// renderDiagnostics prints each diagnostic as "file:line:col: severity:
// message (context)", severity-colored with lipgloss styles.
func renderDiagnostics(ds []diag.Diagnostic) {
	for _, d := range ds {
		style := warningStyle
		if d.Severity == diag.SeverityError {
			style = errorStyle
		}
		line := fmt.Sprintf("%s: %s: %s", d.Location, style.Render(d.Severity.String()), d.Message)
		if d.Context != "" {
			line += " " + contextStyle.Render("("+d.Context+")")
		}
		if len(d.Chain) > 0 {
			line += " " + contextStyle.Render(strings.Join(d.Chain, " -> "))
		}
		fmt.Println(line)
	}
}
