package history

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rileyhilliard/pch/internal/logger"
)

// EventHistoryChanged is sent whenever the history file is rewritten.
const EventHistoryChanged = "history_changed"

// Event is the payload delivered to subscribers.
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// DefaultDebounce coalesces the create/write/rename burst of one save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to a history file, including writes made by
// other processes. The file's directory is watched because saves replace
// the file by rename.
type Watcher struct {
	path     string
	debounce time.Duration
	log      logger.Logger

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	clients map[chan Event]bool
	done    chan struct{}
	once    sync.Once
}

// NewWatcher creates a watcher for the history file at path. The file's
// directory is created if needed so it can be watched before the first save.
func NewWatcher(path string, log logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		log:      logger.OrDefault(log),
		watcher:  fw,
		clients:  make(map[chan Event]bool),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching and broadcasting.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Close stops the watcher and closes every subscriber channel.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()

		w.mu.Lock()
		for ch := range w.clients {
			close(ch)
		}
		w.clients = make(map[chan Event]bool)
		w.mu.Unlock()
	})
	return err
}

// Subscribe returns a channel of change events.
func (w *Watcher) Subscribe() chan Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan Event, 16)
	w.clients[ch] = true
	return ch
}

// Unsubscribe removes and closes ch.
func (w *Watcher) Unsubscribe(ch chan Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.clients[ch]; ok {
		delete(w.clients, ch)
		close(ch)
	}
}

func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op == fsnotify.Chmod {
				continue
			}
			w.log.Debug("history file event: %s", ev.Op)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			w.broadcast(Event{Type: EventHistoryChanged, At: time.Now()})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("history watcher error: %v", err)
		}
	}
}

// broadcast delivers ev to every subscriber, dropping it for any whose
// buffer is full.
func (w *Watcher) broadcast(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for ch := range w.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}
