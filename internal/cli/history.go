package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rileyhilliard/pch/internal/analysis"
	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/history"
	"github.com/rileyhilliard/pch/internal/monitor"
	"github.com/rileyhilliard/pch/internal/ui"
	"github.com/spf13/cobra"
)

// HistoryOutput is the --json payload of `pch history`.
type HistoryOutput struct {
	Entries []history.Entry `json:"entries"`
	Count   int             `json:"count"`
	Path    string          `json:"path"`
}

// summaryWidth bounds the summary column of the history table.
const summaryWidth = 48

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved analyses",
		Long: `List the most recent saved analyses, newest first.

Examples:
  pch history
  pch history --limit 3
  pch history --all --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.loadApp()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.HistoryLimit
			}

			var entries []history.Entry
			if all {
				entries = a.store.LoadAll()
			} else {
				entries = a.store.LoadRecent(limit)
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), HistoryOutput{
					Entries: entries,
					Count:   len(entries),
					Path:    a.store.Path(),
				}, nil)
			}

			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of recent entries to show (default: history_limit)")
	cmd.Flags().BoolVar(&all, "all", false, "show every entry")
	addJSONFlag(cmd, opts)

	cmd.AddCommand(newHistoryClearCmd(opts), newHistoryExportCmd(opts))
	return cmd
}

func printHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No analyses saved yet. Run 'pch analyze' to create one.")
		return
	}

	newest := slices.Clone(entries)
	slices.Reverse(newest)

	rows := make([][]string, len(newest))
	for i, e := range newest {
		status := string(analysis.ParseStatus(e.Analysis))
		if status == "" {
			status = "-"
		}
		rows[i] = []string{
			e.Timestamp.Local().Format(monitor.ReportTimeLayout),
			status,
			ui.Truncate(summaryLine(e.Analysis), summaryWidth),
		}
	}

	fmt.Fprintln(w, ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "Time", Width: len(monitor.ReportTimeLayout)},
		{Title: "Status", Width: 9},
		{Title: "Summary", Width: summaryWidth},
	}, rows))
}

// summaryLine picks the most informative line of an analysis: the first
// one that isn't the status line.
func summaryLine(text string) string {
	var fallback string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if analysis.ParseStatus(line) != analysis.StatusUnknown {
			if fallback == "" {
				fallback = line
			}
			continue
		}
		return line
	}
	return fallback
}

func newHistoryClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved analysis",
		Long: `Delete every saved analysis. Asks for confirmation unless --yes is given.

Examples:
  pch history clear
  pch history clear --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.loadApp()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			count := a.store.Count()
			if !yes {
				if opts.json {
					return writeJSON(out, nil, errors.New(errors.ErrUsage,
						"Refusing to clear history without confirmation",
						"Pass --yes together with --json"))
				}
				ok, err := ui.Confirm(
					fmt.Sprintf("Delete %d saved analys%s?", count, pluralES(count)),
					a.store.Path(),
					"--yes")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			err = a.store.Clear()
			if opts.json {
				return writeJSON(out, map[string]int{"cleared": count}, err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Cleared %d entr%s\n", ui.SymbolSuccess, count, pluralY(count))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	addJSONFlag(cmd, opts)
	return cmd
}

func newHistoryExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		path   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history as JSONL, CSV or Parquet",
		Long: `Export every saved analysis to a file, or to stdout with --output -.

Examples:
  pch history export --format csv --output history.csv
  pch history export --format parquet --output history.parquet
  pch history export --output - | jq .analysis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if !slices.Contains(history.Formats(), format) {
				return errors.New(errors.ErrUsage,
					"Unknown export format: "+format,
					"Use one of: "+strings.Join(history.Formats(), ", "))
			}
			if path == "" {
				return errors.New(errors.ErrUsage,
					"No output file given",
					"Pass --output PATH, or --output - for stdout")
			}

			a, err := opts.loadApp()
			if err != nil {
				return err
			}
			entries := a.store.LoadAll()

			if path == "-" {
				return exportTo(cmd.OutOrStdout(), format, entries)
			}

			if err := history.ExportFile(path, format, entries); err != nil {
				return errors.WrapWithCode(err, errors.ErrUsage,
					"Couldn't export history to "+path,
					"Check the output path is writable")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %d entr%s to %s\n",
				ui.SymbolSuccess, len(entries), pluralY(len(entries)), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", history.FormatJSONL, "export format: "+strings.Join(history.Formats(), ", "))
	cmd.Flags().StringVarP(&path, "output", "o", "", "output file, or - for stdout")
	return cmd
}

func exportTo(w io.Writer, format string, entries []history.Entry) error {
	exp, err := history.NewExporter(format, w)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := exp.Write(e); err != nil {
			_ = exp.Close()
			return err
		}
	}
	return exp.Close()
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func pluralES(n int) string {
	if n == 1 {
		return "is"
	}
	return "es"
}
