// Package persist stores the session snapshot that survives restarts. The
// store hands it opaque JSON; backends only move bytes.
package persist

import (
	"context"
	"sync"
)

// Saver is the durable home of the persisted session subset.
type Saver interface {
	Save(ctx context.Context, data []byte) error
	// Load returns the stored snapshot and whether one exists.
	Load(ctx context.Context) ([]byte, bool, error)
	Clear(ctx context.Context) error
}

// Memory is an in-process Saver used by tests and ephemeral sessions.
type Memory struct {
	mu   sync.Mutex
	data []byte
	set  bool

	// Saves counts Save calls so tests can assert persistence cadence.
	Saves int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.set = true
	m.Saves++
	return nil
}

func (m *Memory) Load(ctx context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, false, nil
	}
	return append([]byte(nil), m.data...), true, nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.set = false
	return nil
}
