package cli

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/pch/internal/analysis"
	"github.com/rileyhilliard/pch/internal/monitor"
	"github.com/rileyhilliard/pch/internal/ui"
	"github.com/spf13/cobra"
)

// AnalyzeOutput is the --json payload of `pch analyze`.
type AnalyzeOutput struct {
	Report   *monitor.HealthReport `json:"report"`
	Text     string                `json:"text"`
	Analysis string                `json:"analysis,omitempty"`
	Status   string                `json:"status,omitempty"`
	Saved    bool                  `json:"saved"`
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Collect a report, analyze it and save the result",
		Long: `Collect a fresh health report, send it to the configured backend and
save the analysis to history.

A failed analysis saves nothing. If the analysis succeeds but can't be
saved, it is still printed and pch exits non-zero.

Examples:
  pch analyze
  pch analyze --json
  LLM_BASE_URL=http://localhost:11434/v1 pch analyze`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.loadApp()
			if err != nil {
				return err
			}
			return runAnalyze(cmd, opts, a)
		},
	}
	addJSONFlag(cmd, opts)
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *rootOptions, a *app) error {
	out := cmd.OutOrStdout()

	var (
		report *monitor.HealthReport
		result string
	)
	work := func(ctx context.Context) error {
		var err error
		report, result, err = a.pipeline.CheckAndAnalyze(ctx)
		return err
	}

	var err error
	if opts.json {
		err = work(cmd.Context())
	} else {
		err = ui.RunSpinner(cmd.Context(), cmd.ErrOrStderr(), "Analyzing with "+a.client.Model(), work)
	}

	if opts.json {
		var data any
		if report != nil {
			data = AnalyzeOutput{
				Report:   report,
				Text:     report.Render(),
				Analysis: result,
				Status:   string(analysis.ParseStatus(result)),
				Saved:    err == nil,
			}
		}
		return writeJSON(out, data, err)
	}

	if report != nil {
		fmt.Fprintln(out, monitor.RenderCard(report, a.thresholds, cardWidth))
	}
	if result != "" {
		fmt.Fprintln(out)
		fmt.Fprint(out, ui.RenderAnalysis(result))
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s Saved to %s\n", ui.SymbolSuccess, a.store.Path())
	return nil
}
