package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// mockProcessor is a test processor that returns predefined chunks.
type mockProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
	got    string
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, text string, chunks []domain.Chunk) ([]domain.Chunk, error) {
	m.got = text
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	if p.Len() != 0 {
		t.Errorf("expected 0 processors, got %d", p.Len())
	}

	p.Add(&mockProcessor{name: "test"})
	if p.Len() != 1 {
		t.Errorf("expected 1 processor, got %d", p.Len())
	}
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	chunks, err := NewPipeline().Process(context.Background(), "test content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != nil {
		t.Errorf("expected nil chunks from empty pipeline, got %v", chunks)
	}
}

func TestPipeline_Process_MultipleProcessors(t *testing.T) {
	first := &mockProcessor{name: "first", chunks: []domain.Chunk{{Content: "first"}}}
	second := &mockProcessor{name: "second", chunks: []domain.Chunk{
		{Content: "modified", Position: 7},
		{Content: "added", Position: 7},
	}}

	chunks, err := NewPipeline(first, second).Process(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Position != 0 || chunks[1].Position != 1 {
		t.Errorf("expected renumbered positions, got %d and %d", chunks[0].Position, chunks[1].Position)
	}
	if first.got != "text" || second.got != "text" {
		t.Error("expected every processor to receive the text")
	}
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	expectedErr := errors.New("processor failed")
	p := NewPipeline(&mockProcessor{name: "failing", err: expectedErr})

	_, err := p.Process(context.Background(), "test content")
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected wrapped error, got: %v", err)
	}
}

func TestPipeline_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(&mockProcessor{name: "chunker"}).Process(ctx, "text")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
