package monitor

import (
	"fmt"
	"strings"
)

// ReportTimeLayout is the timestamp layout used in the report header.
const ReportTimeLayout = "2006-01-02 15:04:05"

const unavailableText = "unavailable"

// Render returns the plain-text report block:
//
//	PC Health Report - 2006-01-02 15:04:05
//
//	CPU Usage: 25.0%
//	Memory: 8.5 GB / 16.0 GB (53.1%)
//	Disk: 450.0 GB / 512.0 GB (87.9%)
func (r *HealthReport) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "PC Health Report - %s\n\n", r.Timestamp.Format(ReportTimeLayout))

	if r.IsAvailable(MetricCPU) {
		fmt.Fprintf(&b, "CPU Usage: %.1f%%\n", r.CPUPercent)
	} else {
		fmt.Fprintf(&b, "CPU Usage: %s\n", unavailableText)
	}

	b.WriteString("Memory: ")
	b.WriteString(usageLine(r.IsAvailable(MetricMemory), r.MemoryUsedGB, r.MemoryTotalGB))
	b.WriteString("\n")

	b.WriteString("Disk: ")
	b.WriteString(usageLine(r.IsAvailable(MetricDisk), r.DiskUsedGB, r.DiskTotalGB))

	return b.String()
}

// String implements fmt.Stringer.
func (r *HealthReport) String() string {
	return r.Render()
}

func usageLine(ok bool, used, total float64) string {
	if !ok {
		return unavailableText
	}
	return fmt.Sprintf("%.1f GB / %.1f GB (%.1f%%)", used, total, percentOf(used, total))
}
