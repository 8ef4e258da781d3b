package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/contre95/scanrelay/src/features/config"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

var _ config.Watcher = (*Watcher)(nil)

// Watcher monitors a single file and emits debounced change events. The
// parent directory is watched so editors that replace the file on save are
// still noticed.
type Watcher struct {
	watcher       *fsnotify.Watcher
	watchPath     string
	debounce      time.Duration
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	pending       config.FileEventType
	stopOnce      sync.Once
	stopChan      chan struct{}
	eventChan     chan<- config.FileEvent
}

// NewWatcher creates a new file watcher.
func NewWatcher(eventChan chan<- config.FileEvent, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:   watcher,
		debounce:  debounce,
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching watchPath for changes.
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	w.watchPath = watchPath
	dir := filepath.Dir(watchPath)
	slog.Info("Starting file watcher", "path", watchPath)

	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.watchLoop(ctx)
	return nil
}

// Stop stops the file watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		slog.Info("Stopping file watcher", "path", w.watchPath)
		close(w.stopChan)

		w.debounceMutex.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
			w.debounceTimer = nil
		}
		w.debounceMutex.Unlock()

		w.watcher.Close()
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			w.Stop()
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.watchPath) {
		return
	}

	var eventType config.FileEventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = config.FileCreated
	case event.Has(fsnotify.Write):
		eventType = config.FileModified
	default:
		return
	}

	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	if w.pending != config.FileCreated {
		w.pending = eventType
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.emitDebounceEvent)
}

// emitDebounceEvent emits a file event after the debounce period.
func (w *Watcher) emitDebounceEvent() {
	w.debounceMutex.Lock()
	eventType := w.pending
	w.pending = ""
	w.debounceTimer = nil
	w.debounceMutex.Unlock()

	event := config.FileEvent{
		Path:      w.watchPath,
		EventType: eventType,
		Timestamp: time.Now(),
	}

	select {
	case w.eventChan <- event:
		slog.Debug("Emitted file event after debounce", "path", event.Path, "type", event.EventType)
	case <-w.stopChan:
	default:
		slog.Warn("Event channel full, dropping file event", "path", event.Path)
	}
}
