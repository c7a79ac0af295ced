package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pch/internal/config"
	"github.com/rileyhilliard/pch/internal/doctor"
	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/ui"
	"github.com/spf13/cobra"
)

// DoctorOutput is the --json payload of `pch doctor`.
type DoctorOutput struct {
	Results []doctor.CheckResult `json:"results"`
	Summary DoctorSummary        `json:"summary"`
	Fixed   bool                 `json:"fixed,omitempty"`
	Errors  []string             `json:"fix_errors,omitempty"`
}

// DoctorSummary counts results by status.
type DoctorSummary struct {
	Pass    int `json:"pass"`
	Warn    int `json:"warn"`
	Fail    int `json:"fail"`
	Fixable int `json:"fixable"`
}

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check config, backend, and history for problems",
		Long: `Run diagnostics: config file and values, backend reachability and
model, history readability and writability, stale locks, and email
settings. --fix repairs what it can (creates a default config, the
history directory, or breaks a stale lock).

Examples:
  pch doctor
  pch doctor --fix
  pch doctor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := doctorApp(opts.configPath)
			checks := doctor.NewChecks(doctor.Env{
				ConfigPath: opts.configPath,
				Config:     a.cfg,
				Backend:    a.client,
				Store:      a.store,
			})

			var results []doctor.CheckResult
			var fixErrs []error
			if opts.json {
				results = doctor.RunAll(checks)
			} else {
				err := ui.RunSpinner(cmd.Context(), cmd.ErrOrStderr(), "Running checks", func(context.Context) error {
					results = doctor.RunAll(checks)
					return nil
				})
				if err != nil {
					return err
				}
			}
			if fix {
				results, fixErrs = doctor.FixAll(checks, results)
			}

			if opts.json {
				out := newDoctorOutput(results, fix, fixErrs)
				if err := writeJSON(cmd.OutOrStdout(), out, nil); err != nil {
					return err
				}
			} else {
				printDoctor(cmd.OutOrStdout(), results, fix, fixErrs)
			}

			if doctor.HasFailures(results) {
				return errors.NewExitError(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "repair fixable issues")
	addJSONFlag(cmd, opts)
	return cmd
}

// doctorApp wires components even when the config is broken, so the
// remaining checks still run against defaults while the config checks
// report the problem.
func doctorApp(configPath string) *app {
	cfg, path, err := config.LoadOrDefault(configPath)
	if err == nil && config.Validate(cfg) == nil {
		return newApp(cfg, path)
	}

	// Defaults plus the environment, ignoring the file.
	cfg, err = config.Load("")
	if err != nil || config.Validate(cfg) != nil {
		cfg = config.DefaultConfig()
	}
	return newApp(cfg, path)
}

func newDoctorOutput(results []doctor.CheckResult, fixed bool, fixErrs []error) DoctorOutput {
	counts := doctor.CountByStatus(results)
	out := DoctorOutput{
		Results: results,
		Summary: DoctorSummary{
			Pass:    counts[doctor.StatusPass],
			Warn:    counts[doctor.StatusWarn],
			Fail:    counts[doctor.StatusFail],
			Fixable: doctor.FixableCount(results),
		},
		Fixed: fixed,
	}
	for _, err := range fixErrs {
		out.Errors = append(out.Errors, err.Error())
	}
	return out
}

func printDoctor(w io.Writer, results []doctor.CheckResult, fixed bool, fixErrs []error) {
	fmt.Fprint(w, ui.RenderHeader(ui.HeaderInfo{
		Version: formatVersion(version),
		Tagline: "doctor",
	}))
	fmt.Fprintln(w)

	rows := make([]ui.DoctorCheckRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, ui.DoctorCheckRow{
			Status:     r.Status.String(),
			Category:   r.Category,
			Message:    r.Message,
			Suggestion: r.Suggestion,
		})
	}
	fmt.Fprint(w, ui.RenderDoctorTable(rows))

	for _, err := range fixErrs {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(ui.ColorError).Render(ui.SymbolFail+" Fix failed: "+err.Error()))
	}

	summary := doctor.Summary(results)
	if doctor.HasIssues(results) {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(ui.ColorWarning).Render(summary))
		if n := doctor.FixableCount(results); n > 0 && !fixed {
			fmt.Fprintf(w, "Run 'pch doctor --fix' to repair %d of them.\n", n)
		}
		return
	}
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(ui.ColorSuccess).Render(ui.SymbolSuccess+" "+summary))
}
