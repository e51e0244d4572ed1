package zone

import (
	"sync"

	"github.com/google/uuid"
)

// Manager owns the single shared Store and serializes access to it. Every
// successful mutation gets a fresh revision id, which observers use to
// notice changes.
type Manager struct {
	mu       sync.RWMutex
	store    *Store
	revision string

	// OnChange is called after each successful mutation with a copy of the
	// new state. It runs outside the lock.
	OnChange func(snapshot *Store, revision string)
}

// NewManager returns a manager holding an empty store.
func NewManager() *Manager {
	return &Manager{
		store:    NewStore(0, 0),
		revision: uuid.NewString(),
	}
}

// View calls fn with the current store under a read lock. fn must not
// retain or modify the store.
func (m *Manager) View(fn func(s *Store)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.store)
}

// Snapshot returns a copy of the current store.
func (m *Manager) Snapshot() *Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Clone()
}

// Revision returns the id of the current state.
func (m *Manager) Revision() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revision
}

// Len returns the number of calibrated zones.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Len()
}

// update applies fn to a copy of the store and commits it only if fn
// succeeds, so a failed operation never leaves partial changes behind.
func (m *Manager) update(fn func(s *Store) (*Store, error)) error {
	m.mu.Lock()
	next, err := fn(m.store.Clone())
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.store = next
	m.revision = uuid.NewString()
	snapshot, revision := next.Clone(), m.revision
	callback := m.OnChange
	m.mu.Unlock()

	if callback != nil {
		callback(snapshot, revision)
	}
	return nil
}

// Calibrate replaces every zone with one zone per marker.
func (m *Manager) Calibrate(markers []Marker, tolerance float64, width, height int) error {
	return m.update(func(*Store) (*Store, error) {
		return Calibrate(markers, tolerance, width, height)
	})
}

// Reassign swaps the display labels of two zones.
func (m *Manager) Reassign(keyA, keyB string) error {
	return m.update(func(s *Store) (*Store, error) {
		return s, s.Reassign(keyA, keyB)
	})
}

// AttachLine sets a zone's output line.
func (m *Manager) AttachLine(key string, line Line) error {
	return m.update(func(s *Store) (*Store, error) {
		return s, s.AttachLine(key, line)
	})
}

// UpdateTolerance sets the tolerance of every zone.
func (m *Manager) UpdateTolerance(tolerance float64) error {
	return m.update(func(s *Store) (*Store, error) {
		return s, s.UpdateTolerance(tolerance)
	})
}

// SetZoneTolerance sets the tolerance of one zone.
func (m *Manager) SetZoneTolerance(key string, tolerance float64) error {
	return m.update(func(s *Store) (*Store, error) {
		return s, s.SetZoneTolerance(key, tolerance)
	})
}

// Reset empties the store.
func (m *Manager) Reset() {
	m.update(func(s *Store) (*Store, error) {
		s.Reset()
		return s, nil
	})
}

// Replace installs s as the current store.
func (m *Manager) Replace(s *Store) {
	m.update(func(*Store) (*Store, error) {
		return s.Clone(), nil
	})
}

// Save writes the current store to path.
func (m *Manager) Save(path string) error {
	return SaveFile(path, m.Snapshot())
}

// Load replaces the current store with the document at path. The current
// store is untouched if the document cannot be read or parsed.
func (m *Manager) Load(path string) error {
	s, err := LoadFile(path)
	if err != nil {
		return err
	}
	m.Replace(s)
	return nil
}
