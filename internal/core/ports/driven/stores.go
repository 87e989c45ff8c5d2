package driven

import (
	"context"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// IndexStore persists per-user vector indexes.
type IndexStore interface {
	// Load reads a user's index. Returns domain.ErrNotFound when the
	// user has never ingested anything.
	Load(ctx context.Context, userID string) (*domain.IndexData, error)

	// Save replaces a user's index. It is atomic: after a failure or crash,
	// Load returns either the previous index or the new one, never a mix.
	Save(ctx context.Context, userID string, data *domain.IndexData) error

	// Delete removes a user's index. Deleting a missing index is not an error.
	Delete(ctx context.Context, userID string) error
}

// DocumentStore is the per-user document registry.
type DocumentStore interface {
	// SaveDocument creates or updates a registry entry.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument returns domain.ErrNotFound for unknown IDs.
	GetDocument(ctx context.Context, userID, id string) (*domain.Document, error)

	// ListDocuments returns a user's documents, oldest first.
	ListDocuments(ctx context.Context, userID string) ([]domain.Document, error)

	// DeleteDocument returns domain.ErrNotFound for unknown IDs.
	DeleteDocument(ctx context.Context, userID, id string) error
}

// BlobStore stores uploaded file bytes.
type BlobStore interface {
	// Save writes data under the user's storage and returns its path.
	Save(ctx context.Context, userID, name string, data []byte) (string, error)

	// Read returns the bytes at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Delete removes the bytes at path. Missing files are not an error.
	Delete(ctx context.Context, path string) error
}

// NotesStore is the append-only log of all cleaned text ingested for a user.
type NotesStore interface {
	// Append adds text to the user's notes. Notes are never truncated.
	Append(ctx context.Context, userID, text string) error

	// Read returns the user's notes, or "" when there are none.
	Read(ctx context.Context, userID string) (string, error)
}
