package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pch/internal/analysis"
)

// StatusColor maps an analysis status onto the semantic palette.
func StatusColor(s analysis.Status) lipgloss.Color {
	switch s {
	case analysis.StatusGood:
		return ColorSuccess
	case analysis.StatusWarning:
		return ColorWarning
	case analysis.StatusCritical:
		return ColorError
	default:
		return ColorMuted
	}
}

// StatusBadge renders a compact status label such as "● Warning".
func StatusBadge(s analysis.Status) string {
	label := string(s)
	if s == analysis.StatusUnknown {
		label = "Unknown"
	}
	return lipgloss.NewStyle().Foreground(StatusColor(s)).Bold(true).Render(SymbolComplete + " " + label)
}

// RenderAnalysis renders a reply under a heading, with any status line
// colored by its classification. The text itself is shown verbatim.
func RenderAnalysis(text string) string {
	status := analysis.ParseStatus(text)
	statusStyle := lipgloss.NewStyle().Foreground(StatusColor(status)).Bold(true)
	headingStyle := lipgloss.NewStyle().Foreground(ColorNeonPink).Bold(true)
	borderStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var b strings.Builder
	b.WriteString(headingStyle.Render("Analysis"))
	b.WriteString("\n")

	for _, line := range strings.Split(text, "\n") {
		b.WriteString(borderStyle.Render("│ "))
		if status != analysis.StatusUnknown && isStatusLine(line) {
			b.WriteString(statusStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func isStatusLine(line string) bool {
	return analysis.ParseStatus(line) != analysis.StatusUnknown
}
