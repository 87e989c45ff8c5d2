package driven

import (
	"context"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// Normaliser extracts and cleans text from raw documents of specific MIME types.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers return 50-89, fallbacks 1-9.
	Priority() int

	// Normalise extracts text from a raw document and cleans it.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Content is the cleaned text.
	Content string

	// MIMEType is the type the document was handled as.
	MIMEType string
}
