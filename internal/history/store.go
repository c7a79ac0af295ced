// Package history persists analysis results to a single JSON file.
//
// The file always holds a complete JSON array: every write goes to a temp
// file in the same directory which is synced and renamed over the
// original. Writers are serialized by a mutex within the process and by a
// lock directory next to the file across processes, so the CLI and the
// dashboard can save at the same time without dropping entries.
//
// Reads fail soft. A missing file is an empty history; an unreadable or
// malformed one is logged and also treated as empty.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/lock"
	"github.com/rileyhilliard/pch/internal/logger"
)

// DefaultPath is where history is kept when nothing is configured.
const DefaultPath = "data/history.json"

// Store is the JSON-file-backed history log.
type Store struct {
	path    string
	lockCfg lock.Config
	log     logger.Logger
	now     func() time.Time

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLockConfig sets how writers wait for the cross-process lock.
func WithLockConfig(cfg lock.Config) Option {
	return func(s *Store) {
		s.lockCfg = cfg
	}
}

// WithLogger sets the logger used for fail-soft read warnings.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.log = logger.OrDefault(l)
	}
}

// WithClock overrides the clock used to name quarantined files.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns a store over path. The file is created on first write.
func NewStore(path string, opts ...Option) *Store {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{
		path: path,
		lockCfg: lock.Config{
			Timeout: 10 * time.Second,
			Stale:   2 * time.Minute,
		},
		log: logger.Default(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// LockDir returns the cross-process lock directory for this store.
func (s *Store) LockDir() string {
	return lock.DirFor(s.path)
}

// Append adds entry to the end of the log. Any failure to persist is
// returned as a STORE_WRITE error.
func (s *Store) Append(entry Entry) error {
	return s.update("append", func(entries []Entry) []Entry {
		return append(entries, entry)
	})
}

// Clear replaces the log with an empty one.
func (s *Store) Clear() error {
	return s.update("clear", func([]Entry) []Entry {
		return []Entry{}
	})
}

// LoadAll returns every entry in append order. It never fails; see the
// package comment.
func (s *Store) LoadAll() []Entry {
	entries, err := s.read()
	if err != nil {
		s.log.Warn("%s", errors.Summary(err))
		return []Entry{}
	}
	return entries
}

// LoadRecent returns the last n entries in append order, or all of them
// when fewer than n exist. n <= 0 yields an empty slice.
func (s *Store) LoadRecent(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	entries := s.LoadAll()
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries
}

// Count returns the number of entries currently stored.
func (s *Store) Count() int {
	return len(s.LoadAll())
}

// Verify reads the file strictly, returning a STORE_CORRUPT error instead
// of falling back to an empty log.
func (s *Store) Verify() (int, error) {
	entries, err := s.read()
	return len(entries), err
}

// update runs a read-modify-write cycle under both locks.
func (s *Store) update(op string, fn func([]Entry) []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir(), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrStoreWrite,
			"Couldn't create the history directory",
			"Check permissions on "+s.dir())
	}

	ctx := context.Background()
	if s.lockCfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lockCfg.Timeout+time.Second)
		defer cancel()
	}

	l, err := lock.Acquire(ctx, s.LockDir(), s.lockCfg, "history "+op)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStoreWrite,
			"Couldn't save history: another pch process is holding the history lock",
			"Try again in a moment")
	}
	defer func() {
		if err := l.Release(); err != nil {
			s.log.Warn("failed to release history lock: %v", err)
		}
	}()

	entries, err := s.read()
	if err != nil {
		s.log.Warn("%s", errors.Summary(err))
		if qerr := s.quarantine(); qerr != nil {
			return qerr
		}
		entries = nil
	}

	return s.write(fn(entries))
}

// read loads the file strictly. A missing file is an empty log.
func (s *Store) read() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrStoreCorrupt,
			"Couldn't read history file "+s.path,
			"Check the file's permissions")
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStoreCorrupt,
			"History file "+s.path+" is malformed",
			"It will be moved aside on the next save")
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// quarantine moves an unreadable file aside so a rewrite doesn't
// destroy it.
func (s *Store) quarantine() error {
	aside := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
	if err := os.Rename(s.path, aside); err != nil && !os.IsNotExist(err) {
		return errors.WrapWithCode(err, errors.ErrStoreWrite,
			"Couldn't move the unreadable history file aside",
			"Move or delete "+s.path+" by hand")
	}
	s.log.Warn("moved unreadable history to %s", aside)
	return nil
}

// write atomically replaces the file with entries.
func (s *Store) write(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStoreWrite, "Couldn't encode history", "")
	}

	tmp, err := os.CreateTemp(s.dir(), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return s.writeErr(err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return s.writeErr(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return s.writeErr(err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return s.writeErr(err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return s.writeErr(err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return s.writeErr(err)
	}
	return nil
}

func (s *Store) writeErr(err error) error {
	return errors.WrapWithCode(err, errors.ErrStoreWrite,
		"Couldn't save history to "+s.path,
		"Check free disk space and permissions on "+s.dir())
}

func (s *Store) dir() string {
	return filepath.Dir(s.path)
}
