package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no normaliser handles a MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoDocuments indicates a user has no persisted index yet.
	// Retrieval turns this into an empty-state answer rather than failing.
	ErrNoDocuments = errors.New("no documents uploaded")

	// ErrDimensionMismatch indicates a vector does not match the index dimension,
	// usually because the embedding model changed between ingestions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrGeneratorUnavailable indicates the answer generator failed or timed out.
	ErrGeneratorUnavailable = errors.New("answer generator unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service failed or is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrPersistence indicates the index could not be written to durable storage.
	ErrPersistence = errors.New("index persistence failed")

	// ErrCorruptIndex indicates persisted vectors and chunks disagree.
	ErrCorruptIndex = errors.New("corrupt index")
)
