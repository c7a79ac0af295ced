package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Card layout constants
const (
	cardMinWidth   = 40
	cardLabelWidth = 8
	cardBarWidth   = 20
)

// RenderCard renders the report as a bordered terminal card with a bar
// per metric, colored by t.
func RenderCard(r *HealthReport, t Thresholds, width int) string {
	if width < cardMinWidth {
		width = cardMinWidth
	}

	lines := []string{
		SectionHeader("PC Health", r.Timestamp.Format(ReportTimeLayout), width),
		SectionContentLine(cardMetricLine("CPU", r.IsAvailable(MetricCPU), r.CPUPercent,
			fmt.Sprintf("%.1f%%", r.CPUPercent), t), width),
		SectionContentLine(cardMetricLine("Memory", r.IsAvailable(MetricMemory), r.MemoryPercent(),
			fmt.Sprintf("%.1f / %.1f GB", r.MemoryUsedGB, r.MemoryTotalGB), t), width),
		SectionContentLine(cardMetricLine("Disk", r.IsAvailable(MetricDisk), r.DiskPercent(),
			fmt.Sprintf("%.1f / %.1f GB", r.DiskUsedGB, r.DiskTotalGB), t), width),
	}
	if r.DiskPath != "" && r.DiskPath != "/" {
		lines = append(lines, SectionContentLine(MutedStyle.Render("disk: "+r.DiskPath), width))
	}
	lines = append(lines, SectionFooter(width))

	return strings.Join(lines, "\n")
}

// cardMetricLine renders "Label  ▰▰▰▱▱  53.1%  8.5 / 16.0 GB".
func cardMetricLine(label string, ok bool, percent float64, detail string, t Thresholds) string {
	name := LabelStyle.Render(padRight(label, cardLabelWidth))
	if !ok {
		return name + MutedStyle.Render(unavailableText)
	}

	pct := MetricStyle(percent, t).Bold(true).Render(fmt.Sprintf("%5.1f%%", percent))
	return lipgloss.JoinHorizontal(lipgloss.Top,
		name,
		ProgressBar(cardBarWidth, percent, t),
		" ",
		pct,
		"  ",
		ValueStyle.Render(detail),
	)
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
