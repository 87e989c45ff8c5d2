package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
	"github.com/custodia-labs/acadrag/internal/core/ports/driving"
	"github.com/custodia-labs/acadrag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerConfig holds retrieval and generation parameters.
type AnswerConfig struct {
	// ContextCharLimit is used when a request does not set one.
	ContextCharLimit int

	// Temperature is sent with every generation request.
	Temperature float64

	// Timeout bounds each generation call.
	Timeout time.Duration
}

// AnswerService retrieves the closest chunks for a question and asks the
// generator for an answer. Failures after validation degrade to a
// fallback answer instead of an error.
type AnswerService struct {
	cache    *IndexCache
	embedder driven.EmbeddingService
	llm      driven.LLMService
	prompts  driven.PromptStore
	cfg      AnswerConfig
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	cache *IndexCache,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	cfg AnswerConfig,
) *AnswerService {
	if cfg.ContextCharLimit <= 0 {
		cfg.ContextCharLimit = domain.DefaultContextCharLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultGeneratorTimeout
	}
	return &AnswerService{
		cache:    cache,
		embedder: embedder,
		llm:      llm,
		prompts:  prompts,
		cfg:      cfg,
	}
}

// Ask answers req.Query from the user's indexed chunks.
func (s *AnswerService) Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error) {
	if err := domain.ValidateUserID(req.UserID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	retrieved, err := s.Retrieve(ctx, req)
	if errors.Is(err, domain.ErrNoDocuments) {
		return &domain.Answer{Text: domain.NoDocumentsAnswer, Status: domain.AnswerNoDocuments}, nil
	}
	if err != nil {
		logger.Warn("retrieve for %s failed: %v", req.UserID, err)
		return &domain.Answer{Text: domain.FallbackAnswer, Status: domain.AnswerFallback}, nil
	}

	text, err := s.generate(ctx, retrieved, req.Query)
	if err != nil {
		logger.Warn("generate for %s failed: %v", req.UserID, err)
		return &domain.Answer{Text: domain.FallbackAnswer, Retrieved: retrieved, Status: domain.AnswerFallback}, nil
	}

	return &domain.Answer{Text: text, Retrieved: retrieved, Status: domain.AnswerGenerated}, nil
}

// Retrieve returns the truncated chunks closest to req.Query, closest
// first. It returns domain.ErrNoDocuments when the user has no index.
func (s *AnswerService) Retrieve(ctx context.Context, req domain.AskRequest) ([]string, error) {
	idx, err := s.cache.GetOrLoad(ctx, req.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoDocuments
	}
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	n := idx.Len()
	if n == 0 {
		return nil, domain.ErrNoDocuments
	}

	vectors, err := s.embedder.EmbedBatch(ctx, []string{req.Query})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for 1 query", domain.ErrEmbeddingUnavailable, len(vectors))
	}

	hits, err := idx.Search(vectors[0], clampTopK(req.TopK, n))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	limit := req.ContextCharLimit
	if limit <= 0 {
		limit = s.cfg.ContextCharLimit
	}

	retrieved := make([]string, 0, len(hits))
	for _, h := range hits {
		chunk, err := idx.Chunk(h.Position)
		if err != nil {
			return nil, err
		}
		retrieved = append(retrieved, truncateRunes(chunk, limit))
	}
	return retrieved, nil
}

func (s *AnswerService) generate(ctx context.Context, retrieved []string, query string) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: not configured", domain.ErrGeneratorUnavailable)
	}

	tmpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}
	prompt := fmt.Sprintf(tmpl, strings.Join(retrieved, "\n"), query)

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	text, err := s.llm.Generate(genCtx, prompt, driven.GenerateOptions{Temperature: s.cfg.Temperature})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneratorUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrGeneratorUnavailable)
	}
	return text, nil
}

// clampTopK clamps k to [1, n].
func clampTopK(k, n int) int {
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}

// truncateRunes returns at most limit characters of s.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
