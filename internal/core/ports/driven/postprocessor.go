package driven

import (
	"context"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// PostProcessor turns normalised text into chunks, or refines chunks
// produced by an earlier processor.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process receives the normalised text and the chunks so far
	// (nil for the first processor) and returns the new chunk list.
	Process(ctx context.Context, text string, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the text through all processors in order.
	Process(ctx context.Context, text string) ([]domain.Chunk, error)
}
