package ui

import (
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/pch/internal/errors"
	"golang.org/x/term"
)

// Confirm asks a yes/no question. Without a terminal on stdin it refuses
// rather than guessing, telling the user which flag skips the prompt.
func Confirm(title, description, skipFlag string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New(errors.ErrUsage,
			"Can't ask for confirmation without a terminal",
			"Pass "+skipFlag+" to confirm non-interactively.")
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		// Esc / Ctrl+C counts as "no"
		return false, nil
	}
	return confirmed, nil
}
