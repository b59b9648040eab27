// Package tokenstore persists the session token pair across process restarts.
package tokenstore

import (
	"sync"

	"github.com/felixgeelhaar/placement/internal/domain"
)

// Store persists a token pair. Implementations must be safe for concurrent use.
//
// Load returns (nil, nil) when nothing usable is persisted.
// Clear removes both halves together.
type Store interface {
	Load() (*domain.Tokens, error)
	Save(tokens domain.Tokens) error
	Clear() error
}

// MemoryStore keeps tokens in process memory only.
type MemoryStore struct {
	mu     sync.Mutex
	tokens *domain.Tokens
	saves  int
	clears int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored tokens.
func (m *MemoryStore) Load() (*domain.Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.tokens.Valid() {
		return nil, nil
	}
	t := *m.tokens
	return &t, nil
}

// Save stores tokens, replacing any previous pair.
func (m *MemoryStore) Save(tokens domain.Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens = &tokens
	m.saves++
	return nil
}

// Clear drops the stored pair.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens = nil
	m.clears++
	return nil
}

// Writes reports how many Save and Clear calls the store has seen.
func (m *MemoryStore) Writes() (saves, clears int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves, m.clears
}
