package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn with the reloaded configuration every time the file at
// path is written or recreated, until ctx is done. A file that fails to
// load is passed to fn as an error.
//
// The parent directory is watched rather than the file, so editors that
// save by renaming a temporary file are seen too.
func Watch(ctx context.Context, path string, logger *slog.Logger, fn func(*Config, error)) error {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Debug("config: watching", slog.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Info("config: reloading", slog.String("path", abs), slog.String("op", event.Op.String()))
			fn(LoadFile(abs))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("config: watcher error", slog.String("error", err.Error()))
		}
	}
}
