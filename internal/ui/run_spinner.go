package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// SpinnerFrames is the braille scan animation used while waiting on the backend.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
	FPS:    time.Second / 12,
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// workDoneMsg carries the result of the wrapped function.
type workDoneMsg struct {
	err error
}

// spinnerModel animates until the work reports back, then leaves a
// final "✓ label 1.2s" or "✗ label 1.2s" line.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	started time.Time
	elapsed time.Duration
	err     error
	done    bool
}

func newSpinnerModel(label string, started time.Time) spinnerModel {
	sp := spinner.New()
	sp.Spinner = SpinnerFrames
	sp.Style = lipgloss.NewStyle().Foreground(ColorSecondary)
	return spinnerModel{spinner: sp, label: label, started: started}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.done = true
		m.err = msg.err
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if !m.done {
		return m.spinner.View() + " " + m.label + "...\n"
	}

	symbol, color := SymbolSuccess, ColorSuccess
	if m.err != nil {
		symbol, color = SymbolFail, ColorError
	}
	timing := lipgloss.NewStyle().Foreground(ColorMuted).Render(formatDuration(m.elapsed))
	return lipgloss.NewStyle().Foreground(color).Render(symbol) + " " + m.label + " " + timing + "\n"
}

// RunSpinner runs fn while a spinner labelled label animates on out.
// When out isn't a terminal it prints a single "label..." line instead.
// The error is fn's own. fn has always returned by the time RunSpinner
// does, so values it assigns are safe to read afterwards.
func RunSpinner(ctx context.Context, out io.Writer, label string, fn func(context.Context) error) error {
	if !IsTerminal(out) {
		fmt.Fprintf(out, "%s...\n", label)
		return fn(ctx)
	}
	return runSpinnerProgram(ctx, label, fn, tea.WithOutput(out), tea.WithInput(nil), tea.WithContext(ctx))
}

func runSpinnerProgram(ctx context.Context, label string, fn func(context.Context) error, opts ...tea.ProgramOption) error {
	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newSpinnerModel(label, time.Now()), opts...)

	finished := make(chan error, 1)
	go func() {
		err := fn(workCtx)
		finished <- err
		p.Send(workDoneMsg{err: err})
	}()

	final, runErr := p.Run()
	if fm, ok := final.(spinnerModel); ok && fm.done {
		return <-finished
	}

	// Interrupted: stop the work and wait for it before handing control back.
	cancel()
	<-finished

	if runErr != nil {
		return runErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%s: interrupted", label)
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
