package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the session whenever the file at path changes, so a login
// or logout done by another storefront process shows up here, and calls
// onChange afterwards. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// sqlite rewrites via journal files, so watch the directory and filter
	dir, name := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove) {
				continue
			}
			if err := s.Reload(ctx); err != nil {
				s.logger.Warn("failed to reload session", zap.Error(err))
				continue
			}
			s.logger.Debug("session reloaded", zap.String("event", event.Op.String()))
			if onChange != nil {
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("session watcher error", zap.Error(err))
		}
	}
}
