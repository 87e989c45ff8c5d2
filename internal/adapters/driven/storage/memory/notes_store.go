package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
)

// Ensure NotesStore implements the interface.
var _ driven.NotesStore = (*NotesStore)(nil)

// NotesStore is an in-memory implementation of driven.NotesStore.
type NotesStore struct {
	mu    sync.RWMutex
	notes map[string]*strings.Builder
}

// NewNotesStore creates a new in-memory notes store.
func NewNotesStore() *NotesStore {
	return &NotesStore{notes: make(map[string]*strings.Builder)}
}

// Append adds a newline and text to the user's notes.
func (s *NotesStore) Append(_ context.Context, userID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.notes[userID]
	if !ok {
		b = &strings.Builder{}
		s.notes[userID] = b
	}
	b.WriteString("\n")
	b.WriteString(text)
	return nil
}

// Read returns the user's notes.
func (s *NotesStore) Read(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.notes[userID]; ok {
		return b.String(), nil
	}
	return "", nil
}
