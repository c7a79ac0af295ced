package cli

import (
	"fmt"

	"github.com/rileyhilliard/pch/internal/monitor"
	"github.com/spf13/cobra"
)

// CheckOutput is the --json payload of `pch check`.
type CheckOutput struct {
	Report *monitor.HealthReport `json:"report"`
	Text   string                `json:"text"`
	Levels map[string]string     `json:"levels"`
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Collect and print a health report",
		Long: `Sample CPU, memory and disk utilization and print the report.
Nothing is sent to the backend and nothing is saved.

Examples:
  pch check
  pch check --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.loadApp()
			if err != nil {
				return err
			}

			report := a.pipeline.RunCheck(cmd.Context())

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), newCheckOutput(report, a.thresholds), nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), monitor.RenderCard(report, a.thresholds, cardWidth))
			return nil
		},
	}
	addJSONFlag(cmd, opts)
	return cmd
}

func newCheckOutput(r *monitor.HealthReport, t monitor.Thresholds) CheckOutput {
	levels := make(map[string]string, 3)
	add := func(m monitor.Metric, percent float64) {
		if r.IsAvailable(m) {
			levels[string(m)] = t.Level(percent).String()
		}
	}
	add(monitor.MetricCPU, r.CPUPercent)
	add(monitor.MetricMemory, r.MemoryPercent())
	add(monitor.MetricDisk, r.DiskPercent())

	return CheckOutput{Report: r, Text: r.Render(), Levels: levels}
}
