package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchFile signals on the returned channel whenever path is written or
// replaced. The parent directory is watched so editors that save by
// renaming a temp file are noticed. Signals coalesce; the watcher stops
// with ctx.
func watchFile(ctx context.Context, path string, logger *log.Logger) (<-chan struct{}, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	changed := make(chan struct{}, 1)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != abs || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				logger.Debug("config changed", "path", e.Name, "op", e.Op)
				select {
				case changed <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watch config", "err", err)
			}
		}
	}()
	return changed, nil
}
