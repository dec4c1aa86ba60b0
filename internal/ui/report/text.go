package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E2E8F0"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// RenderText formats r for a terminal. Colors are dropped automatically when
// the output is not a TTY.
func RenderText(r Report) string {
	var b strings.Builder

	for _, d := range r.Diagnostics {
		b.WriteString(formatDiagnostic(d))
		b.WriteString("\n")
	}
	if len(r.Diagnostics) > 0 {
		b.WriteString("\n")
	}

	project := r.Project
	if project == "" {
		project = "project"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("verylcheck: %s", project)))
	b.WriteString("\n")

	errs, warns := r.Errors(), r.Warnings()
	switch {
	case errs > 0:
		b.WriteString(errorStyle.Render(fmt.Sprintf("%d error(s)", errs)))
		if warns > 0 {
			b.WriteString(", ")
			b.WriteString(warningStyle.Render(fmt.Sprintf("%d warning(s)", warns)))
		}
	case warns > 0:
		b.WriteString(warningStyle.Render(fmt.Sprintf("%d warning(s)", warns)))
	default:
		b.WriteString(successStyle.Render("no problems found"))
	}
	b.WriteString("\n")

	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"%d file(s), %d symbol(s), %d assignment fact(s) in %s",
		r.Files, r.Symbols, r.Facts, r.Duration.Round(time.Microsecond),
	)))
	b.WriteString("\n")
	return b.String()
}

func formatDiagnostic(d Diagnostic) string {
	style := errorStyle
	if d.Severity == "warning" {
		style = warningStyle
	}
	location := d.File
	if d.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
	}
	return fmt.Sprintf("%s: %s %s",
		locationStyle.Render(location),
		style.Render(fmt.Sprintf("%s[%s]:", d.Severity, d.Code)),
		d.Message,
	)
}
