// Package services holds the question-answering core: ingestion into
// per-user indexes, retrieval and answer generation, document management,
// the index cache and per-user locking.
//
// Services depend only on domain types and port interfaces; concrete
// stores and AI providers are injected by internal/app.
package services
