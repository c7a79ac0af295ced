// Package cli implements the pch command-line interface.
//
// Every command is a Cobra command built by NewRootCmd. Commands share a
// small amount of global state (the --config path, --no-color, --json)
// through rootOptions, and build their collaborators through newApp:
//
//   - a monitor.Collector over the system metric source
//   - an analysis.Client for the configured chat-completion backend
//   - a history.Store over the configured JSON file
//   - a pipeline.Pipeline tying the three together
//
// # Command Structure
//
//	pch check            - Collect and print a health report
//	pch analyze          - Collect, analyze and save
//	pch history          - List saved analyses (clear, export)
//	pch status           - When the last analysis ran, and whether one is due
//	pch serve            - Browser dashboard
//	pch doctor           - Diagnose config, backend and store problems
//	pch config           - init, show, set
//	pch version          - Build information
//	pch completion       - Shell completion scripts
//
// # Output
//
// Human output goes to stdout with lipgloss styling (disabled by
// --no-color or NO_COLOR). With --json every command writes a single
// output.Envelope instead, including failures, so scripts never have to
// parse the styled form. Spinners and progress go to stderr.
package cli
