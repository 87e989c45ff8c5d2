package driving

import (
	"context"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// IngestService adds documents to a user's index.
type IngestService interface {
	// Ingest normalises, chunks, embeds and appends a document.
	// On error nothing is appended.
	Ingest(ctx context.Context, userID string, raw *domain.RawDocument) (*domain.IngestResult, error)

	// Rebuild replaces the user's index with one built from raws alone.
	// With no raws the index is removed.
	Rebuild(ctx context.Context, userID string, raws []*domain.RawDocument) (*domain.IngestResult, error)
}
