package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/netascode/nac-test-go/pkg/logging"
)

// Manager holds the currently loaded RunConfig and, in watch mode, reloads
// it whenever the backing merged-data file is rewritten by an external
// generator between runs.
type Manager struct {
	mu      sync.RWMutex
	path    string
	current RunConfig
	watcher *fsnotify.Watcher
}

// NewManager loads path once and returns a Manager wrapping the result.
func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Manager{path: path, current: cfg}, nil
}

// Current returns the most recently loaded configuration.
func (m *Manager) Current() RunConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Watch starts watching the config file for writes, reloading Current() on
// every change. It is intended for a long-lived dev-mode invocation; a
// single CI run typically never calls it. Close stops the watcher.
func (m *Manager) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(m.path); err != nil {
		w.Close()
		return err
	}
	m.watcher = w

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(m.path)
				if err != nil {
					logging.Warn("config", "reload of %s failed: %v", m.path, err)
					continue
				}
				m.mu.Lock()
				m.current = cfg
				m.mu.Unlock()
				logging.Info("config", "reloaded configuration from %s", m.path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.Warn("config", "watcher error: %v", err)
			}
		}
	}()
	return nil
}

// Close stops the file watcher, if one was started.
func (m *Manager) Close() error {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Close()
}
