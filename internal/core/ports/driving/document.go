package driving

import (
	"context"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// DocumentService manages a user's uploaded documents.
type DocumentService interface {
	// Upload stores, ingests and registers a document.
	Upload(ctx context.Context, userID, filename string, data []byte) (*domain.Document, error)

	// List returns the user's documents.
	List(ctx context.Context, userID string) ([]domain.Document, error)

	// Delete removes a document according to the configured delete policy.
	Delete(ctx context.Context, userID, documentID string) error

	// Notes returns the user's accumulated notes.
	Notes(ctx context.Context, userID string) (string, error)
}
