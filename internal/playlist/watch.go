package playlist

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reports create/remove/rename events under dir until ctx is
// cancelled. It exists for operators: the running daemon's FileSet is
// fixed at startup, so changes reported here take effect on restart.
func Watch(ctx context.Context, dir string, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the tree, not just the root: fsnotify does not recurse.
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch library %s: %w", dir, err)
	}

	logger.Info("Watching library; changes apply after restart", zap.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Has(fsnotify.Create):
				logger.Info("Library file added", zap.String("path", event.Name))
				// New directories need their own watch.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					watcher.Add(event.Name)
				}
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				logger.Info("Library file removed", zap.String("path", event.Name))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Library watch error", zap.Error(err))
		}
	}
}
