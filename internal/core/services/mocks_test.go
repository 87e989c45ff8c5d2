package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/acadrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
	"github.com/custodia-labs/acadrag/internal/normalisers"
	"github.com/custodia-labs/acadrag/internal/normalisers/plaintext"
	"github.com/custodia-labs/acadrag/internal/postprocessors"
)

// --- Mock implementations ---

// keywordEmbedder embeds text as keyword counts plus a constant bias
// component, so vectors are deterministic and easy to reason about.
type keywordEmbedder struct {
	mu       sync.Mutex
	keywords []string
	err      error
	dim      int // when > 0, overrides the vector size
	calls    int
}

func newKeywordEmbedder(keywords ...string) *keywordEmbedder {
	return &keywordEmbedder{keywords: keywords}
}

func (m *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		lower := strings.ToLower(t)
		v := make([]float32, 0, len(m.keywords)+1)
		for _, k := range m.keywords {
			v = append(v, float32(strings.Count(lower, k)))
		}
		v = append(v, 1)
		if m.dim > 0 {
			v = make([]float32, m.dim)
		}
		out[i] = v
	}
	return out, nil
}

func (m *keywordEmbedder) Dimensions() int              { return len(m.keywords) + 1 }
func (m *keywordEmbedder) ModelName() string            { return "keywords" }
func (m *keywordEmbedder) Ping(_ context.Context) error { return nil }
func (m *keywordEmbedder) Close() error                 { return nil }

func (m *keywordEmbedder) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *keywordEmbedder) setDim(dim int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dim = dim
}

// raggedEmbedder returns vectors of differing sizes.
type raggedEmbedder struct{ keywordEmbedder }

func (m *raggedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, i+1)
	}
	return out, nil
}

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	mu         sync.Mutex
	response   string
	err        error
	delay      time.Duration
	lastPrompt string
	lastOpts   driven.GenerateOptions
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.lastPrompt = prompt
	m.lastOpts = opts
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.response, m.err
}

func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) prompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

const testAnswerPrompt = "Answer concisely for exam preparation.\nUse bullet points if helpful.\n\n" +
	"NOTES:\n%s\n\nQUESTION:\n%s\n\nANSWER:"

// mockPrompts implements driven.PromptStore for testing.
type mockPrompts struct {
	err error
}

func (m *mockPrompts) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if name != driven.PromptAnswer {
		return "", errors.New("unknown prompt")
	}
	return testAnswerPrompt, nil
}

func (m *mockPrompts) Reload() {}

// failingIndexStore wraps an IndexStore and fails Save or Load on demand.
type failingIndexStore struct {
	driven.IndexStore
	saveErr error
	loadErr error
}

func (f *failingIndexStore) Save(ctx context.Context, userID string, data *domain.IndexData) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.IndexStore.Save(ctx, userID, data)
}

func (f *failingIndexStore) Load(ctx context.Context, userID string) (*domain.IndexData, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.IndexStore.Load(ctx, userID)
}

// failingNotes always fails.
type failingNotes struct{}

func (failingNotes) Append(context.Context, string, string) error { return errors.New("disk full") }
func (failingNotes) Read(context.Context, string) (string, error) { return "", errors.New("disk full") }

// --- Fixtures ---

type fixture struct {
	store    *memory.IndexStore
	notes    *memory.NotesStore
	cache    *IndexCache
	locks    *KeyedMutex
	embedder *keywordEmbedder
	llm      *mockLLM
	ingest   *IngestService
	answer   *AnswerService
}

func newPipeline(t *testing.T, maxLen int) driven.PostProcessorPipeline {
	t.Helper()
	r := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(r)
	p, err := postprocessors.BuildPipeline(r, domain.RAGSettings{MaxChunkLen: maxLen}.PipelineConfig())
	require.NoError(t, err)
	return p
}

func newFixture(t *testing.T, maxLen int) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewIndexStore(),
		notes:    memory.NewNotesStore(),
		locks:    NewKeyedMutex(),
		embedder: newKeywordEmbedder("mitochondria", "atp", "cell"),
		llm:      &mockLLM{response: "- makes ATP"},
	}
	f.cache = NewIndexCache(f.store, nil)
	f.ingest = NewIngestService(
		normalisers.NewRegistry(plaintext.New()),
		newPipeline(t, maxLen),
		f.embedder,
		f.store,
		f.notes,
		f.cache,
		f.locks,
	)
	f.answer = NewAnswerService(f.cache, f.embedder, f.llm, &mockPrompts{}, AnswerConfig{
		ContextCharLimit: 400,
		Temperature:      0.2,
		Timeout:          time.Second,
	})
	return f
}

func textDoc(text string) *domain.RawDocument {
	return &domain.RawDocument{URI: "notes.txt", MIMEType: "text/plain", Content: []byte(text)}
}
