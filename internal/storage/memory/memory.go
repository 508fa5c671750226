// Package memory provides the in-memory implementation of storage.Store.
// It is the authoritative backend: the store is memory-resident with no
// durability contract. Safe for concurrent use.
package memory

import (
	"context"
	"sync"

	"github.com/splitpay/splitpay/internal/models"
	"github.com/splitpay/splitpay/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store holds splits keyed by internal id with a secondary index from
// share token to id. All lookups are O(1). Reads and writes return deep
// copies so callers never share memory with stored state.
type Store struct {
	mu      sync.RWMutex
	splits  map[string]*models.Split
	byToken map[string]string
}

// New creates an empty store.
func New() *Store {
	return &Store{
		splits:  make(map[string]*models.Split),
		byToken: make(map[string]string),
	}
}

// Put inserts a new split.
func (s *Store) Put(_ context.Context, split *models.Split) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byToken[split.Token]; exists {
		return storage.ErrDuplicateToken
	}

	s.splits[split.ID] = split.Clone()
	s.byToken[split.Token] = split.ID
	return nil
}

// GetByID retrieves a split by internal id.
func (s *Store) GetByID(_ context.Context, id string) (*models.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	split, ok := s.splits[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return split.Clone(), nil
}

// GetByToken retrieves a split by share token.
func (s *Store) GetByToken(_ context.Context, token string) (*models.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byToken[token]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.splits[id].Clone(), nil
}

// Update replaces a stored split.
func (s *Store) Update(_ context.Context, split *models.Split) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.splits[split.ID]; !ok {
		return storage.ErrNotFound
	}
	s.splits[split.ID] = split.Clone()
	return nil
}

// All returns a snapshot of every stored split.
func (s *Store) All(_ context.Context) ([]*models.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Split, 0, len(s.splits))
	for _, split := range s.splits {
		out = append(out, split.Clone())
	}
	return out, nil
}

// Remove deletes a split and its token index entry.
func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	split, ok := s.splits[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.byToken, split.Token)
	delete(s.splits, id)
	return nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
