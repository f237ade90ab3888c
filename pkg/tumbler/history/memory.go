// Package history stores session snapshots so generations can be replayed.
package history

import (
	"context"
	"errors"
	"sync"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
)

// ErrNotFound indicates no snapshot matched.
var ErrNotFound = errors.New("snapshot not found")

// Memory is a navigation stack: Push drops any forward entries, Back and
// Forward move the cursor without discarding anything.
type Memory struct {
	mu      sync.Mutex
	entries []models.Snapshot
	cursor  int
}

// NewMemory creates an empty stack.
func NewMemory() *Memory {
	return &Memory{cursor: -1}
}

// Push appends snap after the cursor and moves onto it.
func (m *Memory) Push(_ context.Context, snap models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.cursor+1], snap)
	m.cursor = len(m.entries) - 1
	return nil
}

// Replace overwrites the entry under the cursor, or pushes onto an empty stack.
func (m *Memory) Replace(ctx context.Context, snap models.Snapshot) error {
	m.mu.Lock()
	if m.cursor < 0 {
		m.mu.Unlock()
		return m.Push(ctx, snap)
	}
	defer m.mu.Unlock()
	m.entries[m.cursor] = snap
	return nil
}

// Current returns the entry under the cursor.
func (m *Memory) Current() (models.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor < 0 {
		return models.Snapshot{}, false
	}
	return m.entries[m.cursor], true
}

// Back moves the cursor one entry back and returns that entry.
func (m *Memory) Back() (models.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor <= 0 {
		return models.Snapshot{}, false
	}
	m.cursor--
	return m.entries[m.cursor], true
}

// Forward moves the cursor one entry forward and returns that entry.
func (m *Memory) Forward() (models.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor+1 >= len(m.entries) {
		return models.Snapshot{}, false
	}
	m.cursor++
	return m.entries[m.cursor], true
}

// Get returns the entry with the given id.
func (m *Memory) Get(_ context.Context, id string) (models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, snap := range m.entries {
		if snap.ID == id {
			return snap, nil
		}
	}
	return models.Snapshot{}, ErrNotFound
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
