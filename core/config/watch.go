package config

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the bursts of write events editors produce when
// saving a file.
const watchDebounce = 200 * time.Millisecond

// ErrNoPathConfigured indicates the manager was created without a file path,
// so there is nothing to watch.
var ErrNoPathConfigured = errors.New("no config path configured for watching")

// Watch starts watching the config file for changes and reloads on write.
// The watch runs until Close is called. Watching the parent directory rather
// than the file itself keeps the watch alive across editors that replace the
// file on save.
func (m *Manager) Watch() error {
	if m.path == "" {
		return ErrNoPathConfigured
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(m.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go m.watchLoop(watcher)
	return nil
}

func (m *Manager) watchLoop(watcher *fsnotify.Watcher) {
	defer watcher.Close()

	target, err := filepath.Abs(m.path)
	if err != nil {
		target = m.path
	}

	var debounce *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !m.isConfigEvent(event, target) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				// Reload failures leave the previous snapshot in place.
				_ = m.Reload()
			})

		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}

		case <-m.stopWatch:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}

func (m *Manager) isConfigEvent(event fsnotify.Event, target string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	path, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return path == target
}
