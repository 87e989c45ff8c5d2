// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - EmbeddingService: Maps text to fixed-dimension vectors
//   - LLMService: Answer generator
//   - IndexStore: Per-user vector index persistence
//   - DocumentStore: Per-user document registry
//   - BlobStore: Uploaded file bytes
//   - NotesStore: Append-only per-user notes
//   - NormaliserRegistry: Raw bytes to cleaned text
//   - PostProcessorPipeline: Cleaned text to chunks
//   - ConfigStore, PromptStore: Configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
