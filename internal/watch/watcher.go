// Package watch turns edits to initializer sources into restart requests.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/hestia/internal/discovery"
	"github.com/turtacn/hestia/pkg/logger"
)

// Watcher reports bursts of source changes under a set of roots, one notification
// per burst. fsnotify is not recursive, so every directory is watched individually
// and new directories are added as they appear.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	changes  chan string
}

// New watches every existing directory below roots. Missing roots are skipped.
func New(roots []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, debounce: debounce, changes: make(chan string, 1)}
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		if err := w.addTree(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Changes delivers the path of the last changed source of each burst.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Watched lists the directories currently watched.
func (w *Watcher) Watched() []string { return w.fsw.WatchList() }

// Run processes filesystem events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						logger.Log.Warn("Watch: cannot watch new directory", "dir", event.Name, "err", err)
					}
					continue
				}
			}
			if !discovery.IsSource(event.Name) || event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			logger.Log.Debug("Watch: source changed", "path", event.Name, "op", event.Op.String())
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			select {
			case w.changes <- pending:
			default:
				// a restart is already queued
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("Watch: watcher error", "err", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Personal.AI order the ending
