package sync

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tabvault/tabvault/internal/logger"
)

// DefaultDebounce coalesces the burst of filesystem events a single
// SQLite commit produces into one reload.
const DefaultDebounce = 300 * time.Millisecond

// StoreWatcher watches the local store file and fires a callback when
// another process on the same machine writes it. This is the
// storage-change listener side of reconciliation; the bus covers
// remote clients.
type StoreWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   logger.Logger

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewStoreWatcher creates a watcher for the given store file.
// onChange runs on the watcher goroutine; keep it short (typically a
// trigger-channel send).
func NewStoreWatcher(path string, debounce time.Duration, onChange func(), log logger.Logger) (*StoreWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &StoreWatcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		logger:   log,
		watcher:  w,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the loop runs in a goroutine
// until Stop or ctx cancellation.
func (sw *StoreWatcher) Start(ctx context.Context) error {
	// Watch the directory, not the file: SQLite swaps -wal/-shm files
	// around the main database and editors replace files by rename.
	if err := sw.watcher.Add(filepath.Dir(sw.path)); err != nil {
		return err
	}

	go sw.loop(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit.
func (sw *StoreWatcher) Stop() {
	close(sw.stopCh)
	<-sw.doneCh
	_ = sw.watcher.Close()
}

func (sw *StoreWatcher) loop(ctx context.Context) {
	defer close(sw.doneCh)

	var timer *time.Timer
	var timerCh <-chan time.Time

	base := filepath.Base(sw.path)

	for {
		select {
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.relevant(ev, base) {
				continue
			}
			sw.logger.Debug("store file changed",
				logger.String("path", ev.Name),
				logger.String("op", ev.Op.String()))
			// Restart the debounce window.
			if timer == nil {
				timer = time.NewTimer(sw.debounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(sw.debounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			sw.onChange()

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warn("store watcher error", logger.Error(err))

		case <-sw.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// relevant filters events down to writes against the store file and
// its SQLite sidecars.
func (sw *StoreWatcher) relevant(ev fsnotify.Event, base string) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	return name == base || strings.HasPrefix(name, base+"-")
}
