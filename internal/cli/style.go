package cli

import (
	"os"
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	styleGood = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	styleBad  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// severityToken matches the fixed vocabulary report.RenderText emits for
// risk and compliance levels.
var severityToken = regexp.MustCompile(`\b(LOW|MEDIUM|HIGH|CRITICAL|COMPLIANT|VIOLATIONS|UNKNOWN)\b`)

// stylize colors the severity/compliance tokens in a report.RenderText
// rendering when stdout is a terminal. Piped or redirected output (CI
// logs, a file, `| less`) is left as plain text.
func stylize(text string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return text
	}
	return severityToken.ReplaceAllStringFunc(text, func(tok string) string {
		switch tok {
		case "LOW", "COMPLIANT":
			return styleGood.Render(tok)
		case "MEDIUM":
			return styleWarn.Render(tok)
		case "HIGH", "CRITICAL", "VIOLATIONS":
			return styleBad.Render(tok)
		default:
			return tok
		}
	})
}
