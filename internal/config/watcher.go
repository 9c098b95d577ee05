package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ytget/yt-monitor/internal/logger"
)

// debounce window for editors that write config files in several syscalls
const watchDebounce = 250 * time.Millisecond

// Watch reloads the config file whenever it changes and hands the fresh
// config to apply. It blocks until ctx is cancelled. The parent directory is
// watched rather than the file itself, so atomic rename-into-place saves
// (vim, sed -i) keep working.
func Watch(ctx context.Context, path string, log logger.Interface, apply func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	var pending *time.Timer
	var pendingC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if pending == nil {
				pending = time.NewTimer(watchDebounce)
				pendingC = pending.C
			} else {
				pending.Reset(watchDebounce)
			}
		case <-pendingC:
			pending = nil
			pendingC = nil
			cfg, err := Load(path)
			if err != nil {
				log.Error("config reload failed", "path", path, "error", err)
				continue
			}
			log.Info("config reloaded", "path", path)
			apply(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", "error", err)
		}
	}
}
