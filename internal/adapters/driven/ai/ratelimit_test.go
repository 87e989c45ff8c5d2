package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}
func (c *countingEmbedder) Dimensions() int              { return 1 }
func (c *countingEmbedder) ModelName() string            { return "counting" }
func (c *countingEmbedder) Ping(_ context.Context) error { return nil }
func (c *countingEmbedder) Close() error                 { return nil }

func TestRateLimitedEmbedding_Delegates(t *testing.T) {
	inner := &countingEmbedder{}
	svc := NewRateLimitedEmbedding(inner, 100)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "counting", svc.ModelName())
}

func TestRateLimitedEmbedding_HonoursContext(t *testing.T) {
	inner := &countingEmbedder{}
	svc := NewRateLimitedEmbedding(inner, 0.01)

	// burst of one is consumed by the first call
	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.False(t, svc.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.EmbedBatch(ctx, []string{"b"})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
