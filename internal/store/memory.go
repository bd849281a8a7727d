package store

import (
	"context"
	"sync"

	"github.com/tabvault/tabvault/internal/domain"
)

// Memory is an in-process Store keyed by scope. It backs tests and the
// single-shot CLI paths that never touch disk; access is safe for
// concurrent use.
type Memory struct {
	mu     sync.RWMutex
	scopes map[string][]domain.Group
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{scopes: make(map[string][]domain.Group)}
}

// Load returns a deep copy of the scope's groups, or an empty list for
// an unknown scope.
func (m *Memory) Load(_ context.Context, scope Scope) ([]domain.Group, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups, ok := m.scopes[scope.Key()]
	if !ok {
		return []domain.Group{}, nil
	}
	return domain.CloneGroups(groups), nil
}

// Save stores a deep copy of groups under the scope.
func (m *Memory) Save(_ context.Context, scope Scope, groups []domain.Group) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scopes[scope.Key()] = domain.CloneGroups(groups)
	return nil
}

// Delete removes the scope. Deleting an unknown scope is a no-op.
func (m *Memory) Delete(_ context.Context, scope Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.scopes, scope.Key())
	return nil
}

// Ping always succeeds; memory is always reachable.
func (m *Memory) Ping(context.Context) error { return nil }

// Len returns the number of stored scopes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.scopes)
}
