package ai

import (
	"context"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
)

// Ensure RateLimitedEmbedding implements the interface.
var _ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)

// RateLimitedEmbedding throttles EmbedBatch calls on a wrapped service
// with a token bucket. Each batch costs one token.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimitedEmbedding wraps svc so that at most requestsPerSecond
// batches are sent per second. The burst is the rate rounded up.
func NewRateLimitedEmbedding(svc driven.EmbeddingService, requestsPerSecond float64) *RateLimitedEmbedding {
	burst := int(math.Ceil(requestsPerSecond))
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedEmbedding{
		EmbeddingService: svc,
		limiter:          rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// EmbedBatch waits for a token, then delegates.
func (r *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.EmbedBatch(ctx, texts)
}

// Allow reports whether a batch could be sent immediately.
func (r *RateLimitedEmbedding) Allow() bool {
	return r.limiter.Allow()
}
