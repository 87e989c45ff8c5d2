package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations must be deterministic for a fixed model: the same text
// yields the same vector at ingestion time and at query time.
type EmbeddingService interface {
	// EmbedBatch returns one vector per input text, in input order.
	// All vectors share the same dimension.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the configured vector size, or 0 when the
	// size is only known after the first call.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
