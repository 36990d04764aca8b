// Package assets watches the static asset directory in development mode so
// connected pages can be told to reload.
package assets

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called with the changed path, relative to the assets
// root, after the debounce window closes.
type ChangeCallback func(path string)

// Watch starts an fsnotify watcher on the assets root and reports file
// changes until ctx is cancelled. Bursts of events (editors writing temp
// files, build tools regenerating a tree) are debounced: only the last
// changed path inside the window is reported.
//
// New directories created at runtime are automatically added to the watch
// list.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("assets: watcher started", slog.String("root", root))

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	var pending string

	schedule := func(rel string) {
		pending = rel
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("assets: watcher stopped")
			return nil

		case <-debounceCh:
			logger.Debug("assets: changed", slog.String("path", pending))
			if cb != nil {
				cb(pending)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("assets: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			schedule(rel)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("assets: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and every directory below it to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
