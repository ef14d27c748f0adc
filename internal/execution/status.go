package execution

import (
	"sync"

	"github.com/netascode/nac-test-go/internal/model"
)

// StatusMap is the shared, concurrency-safe live status table OutputProcessor
// writes to and ProgressReporter reads from. Multiple subprocess readers may
// write concurrently.
type StatusMap struct {
	mu      sync.RWMutex
	entries map[string]model.TestStatusEntry
}

// NewStatusMap returns an empty StatusMap.
func NewStatusMap() *StatusMap {
	return &StatusMap{entries: make(map[string]model.TestStatusEntry)}
}

// Set records or replaces the entry for testName.
func (s *StatusMap) Set(testName string, entry model.TestStatusEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[testName] = entry
}

// Get returns the entry for testName, if any.
func (s *StatusMap) Get(testName string) (model.TestStatusEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[testName]
	return e, ok
}

// Snapshot returns a copy of every entry, safe to range over without
// holding the lock.
func (s *StatusMap) Snapshot() map[string]model.TestStatusEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.TestStatusEntry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// ByLane splits the snapshot into two maps keyed by test name. nameToType
// maps each test name to its lane; names it does not list land in api.
func (s *StatusMap) ByLane(nameToType map[string]model.TestType) (api, d2d map[string]model.TestStatusEntry) {
	api = make(map[string]model.TestStatusEntry)
	d2d = make(map[string]model.TestStatusEntry)
	for name, entry := range s.Snapshot() {
		switch nameToType[name] {
		case model.TestTypeD2D:
			d2d[name] = entry
		default:
			api[name] = entry
		}
	}
	return api, d2d
}
