package doctor

import (
	"github.com/rileyhilliard/pch/internal/config"
	"github.com/rileyhilliard/pch/internal/lock"
)

// Env is everything the standard checks inspect.
type Env struct {
	ConfigPath string
	Config     *config.Config
	Backend    Pinger
	Store      Verifier
}

// NewChecks returns the standard diagnostic set in display order. Checks
// that need a piece of Env that is missing are left out.
func NewChecks(env Env) []Check {
	checks := NewConfigChecks(env.ConfigPath)

	cfg := env.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if env.Backend != nil {
		checks = append(checks, &BackendCheck{
			Backend: env.Backend,
			URL:     cfg.Backend.URL,
			Model:   cfg.Backend.Model,
		})
	}

	if env.Store != nil {
		checks = append(checks,
			&StoreReadableCheck{Store: env.Store},
			&StoreWritableCheck{Path: env.Store.Path()},
			&StaleLockCheck{LockDir: lock.DirFor(env.Store.Path()), Stale: cfg.Store.LockStale},
		)
	}

	checks = append(checks, &EmailCheck{Email: cfg.Email})
	return checks
}
