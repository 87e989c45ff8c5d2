package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
type IndexStore struct {
	mu      sync.RWMutex
	indexes map[string]domain.IndexData
	loads   int
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{indexes: make(map[string]domain.IndexData)}
}

func copyIndex(d domain.IndexData) *domain.IndexData {
	out := &domain.IndexData{
		Dimension: d.Dimension,
		Vectors:   make([][]float32, len(d.Vectors)),
		Chunks:    append([]string(nil), d.Chunks...),
	}
	for i, v := range d.Vectors {
		out.Vectors[i] = append([]float32(nil), v...)
	}
	return out
}

// Load returns a copy of the user's index.
func (s *IndexStore) Load(_ context.Context, userID string) (*domain.IndexData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	d, ok := s.indexes[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyIndex(d), nil
}

// Save replaces the user's index with a copy of data.
func (s *IndexStore) Save(_ context.Context, userID string, data *domain.IndexData) error {
	if data == nil {
		return domain.ErrInvalidInput
	}
	if err := data.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[userID] = *copyIndex(*data)
	return nil
}

// Delete removes the user's index.
func (s *IndexStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexes, userID)
	return nil
}

// Loads returns how many times Load has been called.
func (s *IndexStore) Loads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads
}
