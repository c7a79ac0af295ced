package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/lock"
)

// Verifier is the strict read side of the history store.
type Verifier interface {
	Path() string
	Verify() (int, error)
}

// StoreReadableCheck reads the history file strictly. A corrupt file is
// a warning: pch keeps working and sets the file aside on the next save.
type StoreReadableCheck struct {
	Store Verifier
}

func (c *StoreReadableCheck) Name() string     { return "store_readable" }
func (c *StoreReadableCheck) Category() string { return CategoryStore }

func (c *StoreReadableCheck) Run() CheckResult {
	n, err := c.Store.Verify()
	if err != nil {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("History file %s is unreadable", c.Store.Path()),
			Suggestion: "It will be moved aside on the next save; or run 'pch history clear'",
		}
	}

	if _, statErr := os.Stat(c.Store.Path()); os.IsNotExist(statErr) {
		return CheckResult{
			Status:  StatusPass,
			Message: "No history yet",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("History readable (%d entr%s)", n, plural(n, "y", "ies")),
	}
}

func (c *StoreReadableCheck) Fix() error {
	return nil
}

// StoreWritableCheck verifies the history directory exists and accepts
// new files.
type StoreWritableCheck struct {
	Path string
}

func (c *StoreWritableCheck) Name() string     { return "store_writable" }
func (c *StoreWritableCheck) Category() string { return CategoryStore }

func (c *StoreWritableCheck) Run() CheckResult {
	dir := filepath.Dir(c.Path)

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("History directory %s doesn't exist yet", dir),
			Suggestion: "It's created on the first save, or run 'pch doctor --fix'",
			Fixable:    true,
		}
	}
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot access %s: %v", dir, err),
			Suggestion: "Check permissions, or point store.path somewhere else",
		}
	}
	if !info.IsDir() {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s is not a directory", dir),
			Suggestion: "Point store.path somewhere else",
		}
	}

	scratch, err := os.CreateTemp(dir, ".pch-write-*")
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("History directory %s is not writable", dir),
			Suggestion: "Check permissions, or point store.path somewhere else",
		}
	}
	name := scratch.Name()
	_ = scratch.Close()
	_ = os.Remove(name)

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("History directory %s is writable", dir),
	}
}

// Fix creates the history directory.
func (c *StoreWritableCheck) Fix() error {
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrStoreWrite,
			"Couldn't create "+dir,
			"Check permissions on the parent directory")
	}
	return nil
}

// StaleLockCheck looks for a history lock left behind by a crashed process.
type StaleLockCheck struct {
	LockDir string
	Stale   time.Duration
}

func (c *StaleLockCheck) Name() string     { return "store_lock" }
func (c *StaleLockCheck) Category() string { return CategoryStore }

func (c *StaleLockCheck) Run() CheckResult {
	if _, err := os.Stat(c.LockDir); os.IsNotExist(err) {
		return CheckResult{
			Status:  StatusPass,
			Message: "History is not locked",
		}
	}

	holder := lock.Holder(c.LockDir)
	if lock.IsStale(c.LockDir, c.Stale) {
		return CheckResult{
			Status:     StatusWarn,
			Message:    "Stale history lock held by " + holder,
			Suggestion: "Run 'pch doctor --fix' to remove it",
			Fixable:    true,
		}
	}

	return CheckResult{
		Status:     StatusPass,
		Message:    "History locked by " + holder,
		Suggestion: "Another pch process is saving right now",
	}
}

// Fix removes the lock directory.
func (c *StaleLockCheck) Fix() error {
	return lock.ForceRelease(c.LockDir)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
