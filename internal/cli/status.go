package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pch/internal/analysis"
	"github.com/rileyhilliard/pch/internal/monitor"
	"github.com/rileyhilliard/pch/internal/ui"
	"github.com/spf13/cobra"
)

// nowFunc is the clock ages are measured against.
var nowFunc = time.Now

// StatusOutput is the --json payload of `pch status`.
type StatusOutput struct {
	LastAnalysis  *time.Time `json:"last_analysis,omitempty"`
	AgeSeconds    int64      `json:"age_seconds,omitempty"`
	LastStatus    string     `json:"last_status,omitempty"`
	CheckInterval string     `json:"check_interval"`
	Due           bool       `json:"due"`
	Entries       int        `json:"entries"`
	HistoryPath   string     `json:"history_path"`
	Backend       string     `json:"backend"`
	Model         string     `json:"model"`
	ConfigPath    string     `json:"config_path,omitempty"`
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show when the last analysis ran and whether a new one is due",
		Long: `Show the last saved analysis, its age compared with check_interval,
and where pch is reading its config and writing history.

Examples:
  pch status
  pch status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.loadApp()
			if err != nil {
				return err
			}

			st := buildStatus(a, nowFunc())
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), st, nil)
			}
			printStatus(cmd.OutOrStdout(), st, a.cfg.CheckInterval)
			return nil
		},
	}
	addJSONFlag(cmd, opts)
	return cmd
}

func buildStatus(a *app, now time.Time) StatusOutput {
	entries := a.store.LoadAll()
	st := StatusOutput{
		CheckInterval: a.cfg.CheckInterval.String(),
		Entries:       len(entries),
		HistoryPath:   a.store.Path(),
		Backend:       a.cfg.Backend.URL,
		Model:         a.cfg.Backend.Model,
		ConfigPath:    a.configPath,
	}

	if len(entries) == 0 {
		st.Due = a.cfg.CheckInterval > 0
		return st
	}

	last := entries[len(entries)-1]
	ts := last.Timestamp.Time
	age := now.Sub(ts)
	if age < 0 {
		age = 0
	}
	st.LastAnalysis = &ts
	st.AgeSeconds = int64(age / time.Second)
	st.LastStatus = string(analysis.ParseStatus(last.Analysis))
	st.Due = a.cfg.CheckInterval > 0 && age >= a.cfg.CheckInterval
	return st
}

func printStatus(w io.Writer, st StatusOutput, interval time.Duration) {
	label := lipgloss.NewStyle().Foreground(ui.ColorMuted).Width(15)
	line := func(k, v string) {
		fmt.Fprintln(w, label.Render(k)+v)
	}

	if st.LastAnalysis == nil {
		line("Last analysis", "never")
	} else {
		age := time.Duration(st.AgeSeconds) * time.Second
		line("Last analysis", fmt.Sprintf("%s (%s ago)", st.LastAnalysis.Local().Format(monitor.ReportTimeLayout), formatAge(age)))
		status := analysis.Status(st.LastStatus)
		line("Status", ui.StatusBadge(status))
	}

	switch {
	case interval <= 0:
		line("Next check", "not scheduled (check_interval is 0)")
	case st.Due:
		line("Next check", lipgloss.NewStyle().Foreground(ui.ColorWarning).Render("due now")+" - run 'pch analyze'")
	default:
		remaining := interval - time.Duration(st.AgeSeconds)*time.Second
		line("Next check", "in "+formatAge(remaining))
	}

	line("History", fmt.Sprintf("%d entr%s in %s", st.Entries, pluralY(st.Entries), st.HistoryPath))
	line("Backend", fmt.Sprintf("%s (%s)", st.Backend, st.Model))
	if st.ConfigPath != "" {
		line("Config", st.ConfigPath)
	} else {
		line("Config", "defaults (no config file)")
	}
}

// formatAge renders a duration coarsely: "45s", "12m", "3h 5m", "2d 4h".
func formatAge(d time.Duration) string {
	d = d.Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) - h*60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		days := int(d.Hours()) / 24
		h := int(d.Hours()) - days*24
		if h == 0 {
			return fmt.Sprintf("%dd", days)
		}
		return fmt.Sprintf("%dd %dh", days, h)
	}
}
