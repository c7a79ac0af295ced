package dashboard

import (
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rileyhilliard/pch/internal/monitor"
)

// Gauge colors per level, matching the page stylesheet.
var levelHex = map[monitor.Level]string{
	monitor.LevelGood:     "#22c55e",
	monitor.LevelElevated: "#eab308",
	monitor.LevelHigh:     "#ef4444",
}

const unavailableHex = "#9ca3af"

// gaugePage builds one gauge per metric for report.
func gaugePage(report *monitor.HealthReport, t monitor.Thresholds) *components.Page {
	page := components.NewPage()
	page.PageTitle = "PC Health Gauges"
	page.SetLayout(components.PageFlexLayout)

	page.AddCharts(
		newGauge("CPU", report.CPUPercent, report.IsAvailable(monitor.MetricCPU), t),
		newGauge("Memory", report.MemoryPercent(), report.IsAvailable(monitor.MetricMemory), t),
		newGauge("Disk", report.DiskPercent(), report.IsAvailable(monitor.MetricDisk), t),
	)
	return page
}

func newGauge(name string, percent float64, available bool, t monitor.Thresholds) *charts.Gauge {
	g := charts.NewGauge()

	color := unavailableHex
	subtitle := "unavailable"
	if available {
		level := t.Level(percent)
		color = levelHex[level]
		subtitle = level.String()
	} else {
		percent = 0
	}

	g.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "320px", Height: "320px"}),
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: subtitle}),
		charts.WithColorsOpts(opts.Colors{color}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	g.AddSeries(name, []opts.GaugeData{{Name: name, Value: round1(percent)}})
	return g
}

// renderGauges writes the gauge page as standalone HTML.
func renderGauges(w io.Writer, report *monitor.HealthReport, t monitor.Thresholds) error {
	return gaugePage(report, t).Render(w)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
