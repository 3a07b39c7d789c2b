package server

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reloads the workspace whenever the one watched config file
// (foundry.toml) changes on disk; no other .toml file is watched. A client's
// own watched-file notifications cover editor-driven edits; this watcher
// additionally covers changes made outside the editor (git checkout,
// external tooling).
type ConfigWatcher struct {
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	reload  func(profileOverride string) error
	done    chan struct{}
}

// NewConfigWatcher starts watching configPath (typically <root>/foundry.toml)
// and calls reload on every write or create event. The caller must call
// Close to stop the background goroutine.
func NewConfigWatcher(logger *slog.Logger, configPath string, reload func(string) error) (*ConfigWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(configPath); err != nil {
		w.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		logger:  logger.With(slog.String("component", "config-watcher")),
		watcher: w,
		reload:  reload,
		done:    make(chan struct{}),
	}
	go cw.run()
	return cw, nil
}

func (c *ConfigWatcher) run() {
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				c.logger.Debug("config changed, reloading", slog.String("path", event.Name))
				if err := c.reload(""); err != nil {
					c.logger.Warn("reload after config change failed", slog.Any("error", err))
				}
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("config watcher error", slog.Any("error", err))
		case <-c.done:
			return
		}
	}
}

// Close stops the watcher's background goroutine and releases its
// underlying OS resources.
func (c *ConfigWatcher) Close() error {
	close(c.done)
	return c.watcher.Close()
}
