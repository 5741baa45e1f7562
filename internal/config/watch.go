package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDelay is how long Watch waits for writes to settle before reloading.
var WatchDelay = 250 * time.Millisecond

// Watch reloads path whenever it changes and hands the result to fn until
// ctx is done. The parent directory is watched so editors that replace the
// file by renaming are noticed too. fn runs on a timer goroutine; a reload
// that fails to parse is reported as a nil config with the error.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	go processEvents(ctx, watcher, abs, fn)
	return nil
}

func processEvents(ctx context.Context, watcher *fsnotify.Watcher, path string, fn func(*Config, error)) {
	defer watcher.Close()
	var reload *time.Timer
	for {
		select {
		case <-ctx.Done():
			if reload != nil {
				reload.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if reload != nil {
				reload.Stop()
			}
			reload = time.AfterFunc(WatchDelay, func() {
				if ctx.Err() != nil {
					return
				}
				fn(Load(path))
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fn(nil, fmt.Errorf("watcher error: %w", err))
		}
	}
}
