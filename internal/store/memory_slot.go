package store

import "sync"

// MemorySlot keeps slot values in process memory. It backs tests and
// sessions started without durable storage.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

// NewMemorySlot creates an empty slot store.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *MemorySlot) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

// Set overwrites the value under key.
func (m *MemorySlot) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	m.writes++
	return nil
}

// Writes returns how many times Set has been called.
func (m *MemorySlot) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.writes
}
