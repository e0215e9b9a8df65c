package predict

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch evicts the cached bundle of a model when its file changes on disk.
// files maps model ids to bundle paths. The parent directories are watched
// so files replaced by rename are still seen. Watch returns once the watcher
// is running; it stops when ctx is done.
func Watch(ctx context.Context, cache *CachedLoader, files map[string]string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	byPath := make(map[string]string, len(files))
	dirs := make(map[string]struct{})
	for id, p := range files {
		clean := filepath.Clean(p)
		byPath[clean] = id
		dirs[filepath.Dir(clean)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				id, tracked := byPath[filepath.Clean(event.Name)]
				if !tracked || event.Op == fsnotify.Chmod {
					continue
				}
				if cache.Invalidate(id) {
					logger.Info("model file changed, cache evicted", "model", id, "file", event.Name, "op", event.Op.String())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("model watcher error", "error", err)
			}
		}
	}()
	return nil
}
