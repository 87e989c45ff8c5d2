package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
	"github.com/custodia-labs/acadrag/internal/core/ports/driving"
	"github.com/custodia-labs/acadrag/internal/logger"
	"github.com/custodia-labs/acadrag/internal/vectorindex/flat"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs normalise, chunk, embed, append, persist and
// invalidate for new documents.
type IngestService struct {
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	embedder    driven.EmbeddingService
	store       driven.IndexStore
	notes       driven.NotesStore
	cache       *IndexCache
	locks       *KeyedMutex
}

// NewIngestService creates a new ingestion service. notes may be nil.
func NewIngestService(
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	notes driven.NotesStore,
	cache *IndexCache,
	locks *KeyedMutex,
) *IngestService {
	return &IngestService{
		normalisers: normalisers,
		pipeline:    pipeline,
		embedder:    embedder,
		store:       store,
		notes:       notes,
		cache:       cache,
		locks:       locks,
	}
}

// Ingest adds one document to the user's index. Nothing is appended
// unless every step succeeds.
func (s *IngestService) Ingest(
	ctx context.Context,
	userID string,
	raw *domain.RawDocument,
) (*domain.IngestResult, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}

	text, err := s.normalise(ctx, raw)
	if err != nil {
		return nil, err
	}

	if s.notes != nil && text != "" {
		if err := s.notes.Append(ctx, userID, text); err != nil {
			logger.Warn("notes: append for %s failed: %v", userID, err)
		}
	}

	chunks, err := s.chunk(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		logger.Debug("ingest: %s produced no chunks", raw.URI)
		return &domain.IngestResult{}, nil
	}

	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	idx, err := s.loadForWrite(ctx, userID, len(vectors[0]))
	if err != nil {
		return nil, err
	}
	if err := idx.Append(vectors, chunks); err != nil {
		return nil, fmt.Errorf("append to index: %w", err)
	}
	if err := s.persist(ctx, userID, idx); err != nil {
		return nil, err
	}

	logger.Info("ingest: %s added %d chunks for %s (total %d)", raw.URI, len(chunks), userID, idx.Len())
	return &domain.IngestResult{Chunks: len(chunks), Total: idx.Len()}, nil
}

// Rebuild replaces the user's index with one built from raws only.
// The existing index is untouched when any document fails.
func (s *IngestService) Rebuild(
	ctx context.Context,
	userID string,
	raws []*domain.RawDocument,
) (*domain.IngestResult, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}

	var chunks []string
	for _, raw := range raws {
		text, err := s.normalise(ctx, raw)
		if err != nil {
			return nil, err
		}
		c, err := s.chunk(ctx, text)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c...)
	}

	if len(chunks) == 0 {
		unlock := s.locks.Lock(userID)
		defer unlock()

		if err := s.store.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		s.cache.Invalidate(userID)
		logger.Info("rebuild: removed index for %s", userID)
		return &domain.IngestResult{}, nil
	}

	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	idx, err := flat.New(len(vectors[0]))
	if err != nil {
		return nil, err
	}
	if err := idx.Append(vectors, chunks); err != nil {
		return nil, fmt.Errorf("append to index: %w", err)
	}
	if err := s.persist(ctx, userID, idx); err != nil {
		return nil, err
	}

	logger.Info("rebuild: %d chunks from %d documents for %s", len(chunks), len(raws), userID)
	return &domain.IngestResult{Chunks: len(chunks), Total: idx.Len()}, nil
}

func (s *IngestService) normalise(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	}
	res, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("normalise %s: %w", raw.URI, err)
	}
	return res.Content, nil
}

func (s *IngestService) chunk(ctx context.Context, text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	chunks, err := s.pipeline.Process(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("chunk text: %w", err)
	}
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Content)
	}
	return out, nil
}

// embed embeds chunks in one batch and checks the provider contract:
// one vector per chunk, all of the same non-zero dimension.
func (s *IngestService) embed(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty vector", domain.ErrEmbeddingUnavailable)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d",
				domain.ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return vectors, nil
}

// loadForWrite reads the user's index from the store, not the cache,
// so the caller owns the result. A missing index starts empty.
func (s *IngestService) loadForWrite(ctx context.Context, userID string, dim int) (*flat.Index, error) {
	data, err := s.store.Load(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return flat.New(dim)
	}
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return flat.FromData(data)
}

func (s *IngestService) persist(ctx context.Context, userID string, idx *flat.Index) error {
	if err := s.store.Save(ctx, userID, idx.Data()); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	s.cache.Invalidate(userID)
	return nil
}
