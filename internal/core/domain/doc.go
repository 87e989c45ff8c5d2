// Package domain defines the core business entities for acadrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A user-uploaded source file
//   - Chunk: A bounded-length retrieval unit of normalised text
//   - IndexData: The persisted form of a per-user vector index
//   - Answer: The outcome of a retrieval-augmented question
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
