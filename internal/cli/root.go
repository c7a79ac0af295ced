package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/output"
	"github.com/rileyhilliard/pch/internal/ui"
	"github.com/spf13/cobra"
)

// rootOptions is the state shared by every command.
type rootOptions struct {
	configPath string
	noColor    bool
	json       bool
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pch",
		Short: "PC health analyzer - sample CPU, memory and disk and ask a local model what it thinks",
		Long: `pch samples CPU, memory and disk utilization, sends the report to an
OpenAI-compatible chat-completion server (LM Studio, Ollama, llama.cpp...)
and keeps every analysis in a local history file.

Examples:
  pch check
  pch analyze
  pch history --limit 5
  pch serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor || os.Getenv("NO_COLOR") != "" {
				ui.DisableColors()
			}
		},
	}

	cmd.SetFlagErrorFunc(flagError)

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./.pch.yaml, then ~/.config/pch/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newCheckCmd(opts),
		newAnalyzeCmd(opts),
		newHistoryCmd(opts),
		newStatusCmd(opts),
		newServeCmd(opts),
		newDoctorCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
		newCompletionCmd(),
	)
	return cmd
}

// addJSONFlag registers the --json flag on a command.
func addJSONFlag(cmd *cobra.Command, opts *rootOptions) {
	cmd.Flags().BoolVar(&opts.json, "json", false, "output in JSON format")
}

// Execute runs the CLI and exits with the appropriate status.
func Execute() {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err == nil {
		return
	}
	os.Exit(handleError(err, jsonRequested(os.Args[1:]), os.Stdout, os.Stderr))
}

// handleError reports err and returns the process exit code. Commands
// that already reported their failure return an ExitError.
func handleError(err error, asJSON bool, stdout, stderr io.Writer) int {
	if code, ok := errors.GetExitCode(err); ok {
		return code
	}

	if isUnknownCommandError(err) {
		msg := err.Error()
		if name := extractUnknownCommand(err); name != "" {
			msg = fmt.Sprintf("'%s' isn't a pch command", name)
		}
		err = errors.New(errors.ErrUsage, msg, "Run 'pch --help' to see the available commands.")
	}

	if asJSON {
		_ = output.WriteError(stdout, err)
	} else {
		fmt.Fprintln(stderr, err.Error())
	}

	if errors.IsCode(err, errors.ErrUsage) {
		return 2
	}
	return 1
}

// flagError classifies flag parsing failures as usage errors. A negative
// number given as a value parses as a shorthand flag, so that case points
// at the "--" separator.
func flagError(cmd *cobra.Command, err error) error {
	suggestion := fmt.Sprintf("Run '%s --help' to see the available flags.", cmd.CommandPath())
	if strings.HasPrefix(err.Error(), "unknown shorthand flag") && looksNumeric(err.Error()) {
		suggestion = fmt.Sprintf("Put '--' before negative values: %s -- KEY -1", cmd.CommandPath())
	}
	return errors.New(errors.ErrUsage, err.Error(), suggestion)
}

// looksNumeric reports whether a pflag message like
// "unknown shorthand flag: '1' in -1" was triggered by a number.
func looksNumeric(msg string) bool {
	i := strings.LastIndex(msg, " -")
	if i < 0 || i+2 >= len(msg) {
		return false
	}
	c := msg[i+2]
	return c >= '0' && c <= '9'
}

// jsonRequested reports whether --json appears among args. Errors raised
// before flag parsing finishes still honor it.
func jsonRequested(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "--json" || a == "--json=true" {
			return true
		}
	}
	return false
}

// isUnknownCommandError reports whether err is Cobra's unknown command or
// flag error.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the command name out of
// `unknown command "foo" for "pch"`.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	if !strings.HasPrefix(msg, "unknown command") {
		return ""
	}
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
