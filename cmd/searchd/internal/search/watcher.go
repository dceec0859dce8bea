package search

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/searchbox/linesearchd/cmd/searchd/internal/logger"
)

// reloadDebounce coalesces the event bursts editors and atomic-rename
// writers produce into a single reload.
const reloadDebounce = 200 * time.Millisecond

// Watch reloads c whenever the reference file changes on disk. The parent
// directory is watched rather than the file itself so replace-by-rename
// writes are caught. The watch goroutine runs until ctx is cancelled.
func Watch(ctx context.Context, c *CachedSearcher) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(c.path)
	logger.Info("Watching reference file for changes", "path", target)

	go func() {
		defer watcher.Close()

		debounce := time.NewTimer(reloadDebounce)
		if !debounce.Stop() {
			<-debounce.C
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				debounce.Reset(reloadDebounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("File watcher error", "error", err)

			case <-debounce.C:
				if err := c.Reload(); err != nil {
					logger.Error("Failed to reload reference file", "path", target, "error", err)
					continue
				}
				logger.Info("Reference file reloaded", "path", target, "lines", c.Len())
			}
		}
	}()

	return nil
}
