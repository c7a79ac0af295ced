package cli

import (
	"github.com/rileyhilliard/pch/internal/errors"
)

// reported converts an error the command has already shown into a bare
// exit status.
func reported(err error) error {
	if errors.IsCode(err, errors.ErrUsage) {
		return errors.NewExitError(2)
	}
	return errors.NewExitError(1)
}
