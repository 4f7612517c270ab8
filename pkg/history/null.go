package history

import (
	"context"

	"github.com/google/uuid"
)

// NullStore is a store that never keeps anything.
// Used by --no-history and in tests.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// Save does nothing.
func (s *NullStore) Save(ctx context.Context, r *Record) error {
	return nil
}

// Load always reports the record as missing.
func (s *NullStore) Load(ctx context.Context, id uuid.UUID) (*Record, error) {
	return nil, notFound(id)
}

// List always returns no records.
func (s *NullStore) List(ctx context.Context, limit int) ([]*Record, error) {
	return nil, nil
}

// Delete does nothing.
func (s *NullStore) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

// Close does nothing.
func (s *NullStore) Close() error {
	return nil
}

var _ Store = (*NullStore)(nil)
