// Package watch re-ingests a dependency report whenever it changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of writes into one reload.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc is called after the watched file settles.
type ReloadFunc func(ctx context.Context, path string) error

// Watcher watches a single report file. The parent directory is watched so
// that editors which replace the file (write temp, rename) are seen too.
type Watcher struct {
	path     string
	reload   ReloadFunc
	logger   *log.Logger
	debounce time.Duration

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for path. Call Start to begin watching.
func New(path string, reload ReloadFunc, logger *log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		path:     abs,
		reload:   reload,
		logger:   logger,
		debounce: DefaultDebounce,
		watcher:  fw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce changes the debounce interval. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	reloadCh := make(chan struct{}, 1)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-w.stopCh:
			stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			stopTimer()
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case reloadCh <- struct{}{}:
				default:
				}
			})

		case <-reloadCh:
			start := time.Now()
			if err := w.reload(ctx, w.path); err != nil {
				w.logger.Error("reload failed", "path", w.path, "error", err)
				continue
			}
			w.logger.Info("reloaded report", "path", w.path, "duration", time.Since(start))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// relevant reports whether event touches the watched file with a write,
// create or rename-into.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}
