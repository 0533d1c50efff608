package rollback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emberhaus/hotswap/pkg/version"
)

var (
	// ErrNotFound is returned when a handle was never issued or has been
	// evicted from the pool.
	ErrNotFound = errors.New("rollback state not found")

	// ErrInvalidArgument is returned for nil payloads.
	ErrInvalidArgument = errors.New("invalid argument")
)

// HandleID identifies one snapshot in the pool.
type HandleID uint64

// Handle is the caller-visible reference to a snapshot. The snapshot bytes
// themselves stay owned by the manager.
type Handle struct {
	ID        HandleID
	Version   version.Version
	Size      int
	CreatedAt time.Time
}

// DefaultCapacity is the number of snapshots retained when no capacity is
// configured.
const DefaultCapacity = 32

type slot struct {
	handle Handle
	data   []byte
}

// Manager owns the bounded snapshot pool. A single mutex serializes all
// operations; lookups go through a slot map keyed by handle id.
type Manager struct {
	mu       sync.Mutex
	capacity int
	slots    map[HandleID]*slot
	order    []HandleID // insertion order, oldest first
	nextID   HandleID
}

// NewManager creates a pool with the given capacity; zero or negative means
// DefaultCapacity.
func NewManager(capacity int) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manager{
		capacity: capacity,
		slots:    make(map[HandleID]*slot, capacity),
		order:    make([]HandleID, 0, capacity),
	}
}

// Snapshot copies the payload into an owned snapshot and returns its handle.
// Cost is O(len(payload)). If the pool is full the oldest snapshot is
// evicted first.
func (m *Manager) Snapshot(v version.Version, payload []byte) (Handle, error) {
	if payload == nil {
		return Handle{}, fmt.Errorf("%w: nil payload", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.order) >= m.capacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.slots, oldest)
	}

	m.nextID++
	data := make([]byte, len(payload))
	copy(data, payload)

	s := &slot{
		handle: Handle{
			ID:        m.nextID,
			Version:   v,
			Size:      len(data),
			CreatedAt: time.Now().UTC(),
		},
		data: data,
	}
	m.slots[s.handle.ID] = s
	m.order = append(m.order, s.handle.ID)
	return s.handle, nil
}

// Restore returns the exact bytes saved under the handle. The returned slice
// is a copy; mutating it does not touch the stored snapshot.
func (m *Manager) Restore(id HandleID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: handle %d", ErrNotFound, id)
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Cleanup releases a snapshot explicitly.
func (m *Manager) Cleanup(id HandleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.slots[id]; !ok {
		return fmt.Errorf("%w: handle %d", ErrNotFound, id)
	}
	delete(m.slots, id)
	for i, hid := range m.order {
		if hid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns up to max handles, oldest first.
func (m *Manager) List(max int) []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	if max <= 0 || max > len(m.order) {
		max = len(m.order)
	}
	out := make([]Handle, 0, max)
	for _, id := range m.order[:max] {
		out = append(out, m.slots[id].handle)
	}
	return out
}

// Len returns the number of retained snapshots.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}
