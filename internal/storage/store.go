// Package storage provides abstractions for split storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitpay/splitpay/internal/models"
)

// Sentinel errors returned by Store implementations. Callers match them
// with errors.Is.
var (
	// ErrNotFound is returned when no split matches the given id or token.
	ErrNotFound = errors.New("split not found")

	// ErrDuplicateToken is returned by Put when the split's token is
	// already present in the token index.
	ErrDuplicateToken = errors.New("duplicate share token")
)

// Store defines the interface for split storage operations. This
// abstraction allows swapping the in-memory backend for SQLite (or any
// future backend) without changing the service layer.
//
// Implementations must be safe for concurrent use: a split is mutated by
// at most one in-flight operation at a time.
type Store interface {
	// Put inserts a new split. Fails with ErrDuplicateToken if the
	// share token is already indexed.
	Put(ctx context.Context, split *models.Split) error

	// GetByID retrieves a split by internal id.
	// Fails with ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*models.Split, error)

	// GetByToken retrieves a split by share token.
	// Fails with ErrNotFound if absent.
	GetByToken(ctx context.Context, token string) (*models.Split, error)

	// Update replaces a stored split, keyed by its id.
	// Fails with ErrNotFound if absent.
	Update(ctx context.Context, split *models.Split) error

	// All returns a snapshot of every stored split, order unspecified.
	// Used by the sweeper and diagnostics only.
	All(ctx context.Context) ([]*models.Split, error)

	// Remove deletes a split and its token index entry.
	// Fails with ErrNotFound if absent.
	Remove(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
