// Package lock provides a cross-process lock backed by a directory on the
// local filesystem. mkdir is atomic, so whichever process creates the
// directory holds the lock; an info.json inside records who that is.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/pch/internal/errors"
)

// InfoFile is the holder record written inside the lock directory.
const InfoFile = "info.json"

// Config controls acquisition behavior.
type Config struct {
	// Timeout bounds how long Acquire waits. Zero means try once.
	Timeout time.Duration
	// Stale is the age after which a held lock is considered abandoned
	// and removed. Zero disables stale detection.
	Stale time.Duration
	// RetryInterval is the pause between attempts. Defaults to 50ms.
	RetryInterval time.Duration
}

const defaultRetryInterval = 50 * time.Millisecond

// Lock represents an acquired lock directory.
type Lock struct {
	Dir  string    // The lock directory path
	Info *LockInfo // Info about the lock holder (us)
}

// DirFor returns the lock directory guarding path: "<path>.lock".
func DirFor(path string) string {
	return path + ".lock"
}

// Acquire takes the lock at dir, waiting up to cfg.Timeout.
// Stale locks (older than cfg.Stale) are removed and retried immediately.
func Acquire(ctx context.Context, dir string, cfg Config, command string) (*Lock, error) {
	retry := cfg.RetryInterval
	if retry <= 0 {
		retry = defaultRetryInterval
	}

	deadline := time.Now().Add(cfg.Timeout)

	for {
		l, err := TryAcquire(dir, cfg, command)
		if err == nil {
			return l, nil
		}
		if err != ErrLocked {
			return nil, err
		}

		if !time.Now().Before(deadline) {
			return nil, errors.New(errors.ErrLock,
				fmt.Sprintf("Timed out waiting for lock after %s", cfg.Timeout),
				fmt.Sprintf("Lock held by: %s. Wait for it to finish, or run 'pch doctor --fix' if that process is gone.", Holder(dir)))
		}

		select {
		case <-ctx.Done():
			return nil, errors.WrapWithCode(ctx.Err(), errors.ErrLock,
				"Gave up waiting for lock",
				"")
		case <-time.After(retry):
		}
	}
}

// TryAcquire makes a single attempt. It returns ErrLocked when another
// process holds a lock that isn't stale.
func TryAcquire(dir string, cfg Config, command string) (*Lock, error) {
	if IsStale(dir, cfg.Stale) {
		breakStale(dir, cfg.Stale)
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Failed to create lock parent directory",
			"Check permissions on "+filepath.Dir(dir))
	}

	if err := os.Mkdir(dir, 0755); err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Failed to create lock directory",
			"Check permissions on "+filepath.Dir(dir))
	}

	info, err := NewLockInfo(command)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Failed to create lock info",
			"Check hostname and user environment")
	}

	data, err := info.Marshal()
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, InfoFile), data, 0644)
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Failed to write lock info file",
			"Check disk space and permissions")
	}

	return &Lock{Dir: dir, Info: info}, nil
}

// breakStale removes the lock at dir if it is still stale. Breakers
// serialize on a sibling "<dir>.break" directory and re-check under it, so
// a process acting on an old IsStale answer can't remove a lock that was
// taken fresh in the meantime. The losers just return.
func breakStale(dir string, threshold time.Duration) {
	guard := dir + breakSuffix
	if err := os.Mkdir(guard, 0755); err != nil {
		// A guard this old belongs to a breaker that died mid-break.
		if os.IsExist(err) && IsStale(guard, threshold) {
			_ = os.Remove(guard)
		}
		return
	}
	defer os.Remove(guard)

	if !IsStale(dir, threshold) {
		return
	}

	aside := fmt.Sprintf("%s.stale-%d-%d", dir, os.Getpid(), time.Now().UnixNano())
	if err := os.Rename(dir, aside); err != nil {
		return
	}
	_ = os.RemoveAll(aside)
}

const breakSuffix = ".break"

// Release removes the lock, allowing others to acquire it.
func (l *Lock) Release() error {
	if l == nil || l.Dir == "" {
		return nil
	}
	return ForceRelease(l.Dir)
}

// ForceRelease removes a lock directory regardless of who holds it.
// Only meant for abandoned locks.
func ForceRelease(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Failed to remove lock directory: %s", dir),
			"Remove it by hand if the owning process is gone")
	}
	return nil
}

// Inspect reads the holder record. It returns (nil, nil) when the lock
// isn't held.
func Inspect(dir string) (*LockInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, InfoFile))
	if err != nil {
		if os.IsNotExist(err) {
			if _, statErr := os.Stat(dir); os.IsNotExist(statErr) {
				return nil, nil
			}
		}
		return nil, err
	}
	return ParseLockInfo(data)
}

// Holder returns a description of who holds the lock at dir.
func Holder(dir string) string {
	info, err := Inspect(dir)
	if err != nil || info == nil {
		return "unknown"
	}
	return info.String()
}

// IsStale reports whether the lock at dir is older than threshold.
// A directory without a readable info file is judged by its mtime.
func IsStale(dir string, threshold time.Duration) bool {
	if threshold <= 0 {
		return false
	}

	info, err := Inspect(dir)
	if err == nil && info != nil {
		return info.Age() > threshold
	}

	st, statErr := os.Stat(dir)
	if statErr != nil {
		return false
	}
	return time.Since(st.ModTime()) > threshold
}
