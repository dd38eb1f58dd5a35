package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"mocksmith/internal/logging"
)

// Watcher reloads config when the file changes on disk.
// Only the logging section takes effect at runtime; transport and server
// settings require a restart.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching path and invokes onReload with the freshly loaded
// config after each change. Errors during reload keep the previous config.
func Watch(path string, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors replace files instead of writing in place,
	// which would drop a watch on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{path: path, watcher: fw, done: make(chan struct{})}
	go w.run(onReload)
	return w, nil
}

func (w *Watcher) run(onReload func(*Config)) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				logging.ConfigWarn("config reload failed, keeping previous: %v", err)
				continue
			}
			if err := logging.ReloadConfig(); err != nil {
				logging.ConfigWarn("logging reload failed: %v", err)
			}
			logging.ConfigInfo("config reloaded from %s", w.path)
			if onReload != nil {
				onReload(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.ConfigWarn("config watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
