package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/acadrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// mockAIValidator records what it was asked to validate.
type mockAIValidator struct {
	embedErr  error
	llmErr    error
	embedding *domain.EmbeddingSettings
	llm       *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(s *domain.EmbeddingSettings) error {
	m.embedding = s
	return m.embedErr
}

func (m *mockAIValidator) ValidateLLM(s *domain.LLMSettings) error {
	m.llm = s
	return m.llmErr
}

// readOnlyConfig rejects writes.
type readOnlyConfig struct {
	*memory.ConfigStore
}

func (readOnlyConfig) Set(string, any) error { return errors.New("read-only") }

func TestSettingsService_GetDefaults(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)
	assert.NoError(t, got.Validate())
}

func TestSettingsService_GetStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeyDataDir:          "/srv/acadrag",
		KeyStorageBackend:   "sqlite",
		KeyEmbedProvider:    "openai",
		KeyEmbedAPIKey:      "sk-embed",
		KeyEmbedRPS:         2.5,
		KeyLLMProvider:      "gemini",
		KeyLLMAPIKey:        "gm-key",
		KeyLLMTemperature:   0.0,
		KeyLLMTimeout:       "15s",
		KeyMaxChunkLen:      int64(300),
		KeyContextCharLimit: 200,
		KeyTopK:             5,
		KeyCacheCapacity:    16,
		KeyDeletePolicy:     "rebuild",
		KeyHTTPAddr:         "127.0.0.1:9000",
	})
	svc := NewSettingsService(store, nil)

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "/srv/acadrag", got.DataDir)
	assert.Equal(t, domain.StorageSQLite, got.Storage)

	assert.Equal(t, domain.AIProviderOpenAI, got.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", got.Embedding.Model)
	assert.Empty(t, got.Embedding.BaseURL)
	assert.Equal(t, "sk-embed", got.Embedding.APIKey)
	assert.InDelta(t, 2.5, got.Embedding.RequestsPerSecond, 1e-9)

	assert.Equal(t, domain.AIProviderGemini, got.LLM.Provider)
	assert.Equal(t, "gemini-1.5-flash", got.LLM.Model)
	assert.Zero(t, got.LLM.Temperature, "an explicit zero is kept")
	assert.Equal(t, 15*time.Second, got.LLM.Timeout)

	assert.Equal(t, domain.RAGSettings{MaxChunkLen: 300, ContextCharLimit: 200, TopK: 5}, got.RAG)
	assert.Equal(t, 16, got.CacheCapacity)
	assert.Equal(t, domain.DeleteRebuild, got.DeletePolicy)
	assert.Equal(t, "127.0.0.1:9000", got.HTTPAddr)
}

func TestSettingsService_GetUnknownProviderFallsBack(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(map[string]any{KeyLLMProvider: "anthropic"}), nil)

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, got.LLM.Provider)
}

func TestSettingsService_GetBadTimeout(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(map[string]any{KeyLLMTimeout: "soon"}), nil)

	_, err := svc.Get()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	want := domain.DefaultSettings()
	want.DataDir = "/tmp/acadrag"
	want.RAG.TopK = 7
	want.LLM.Timeout = 90 * time.Second
	want.LLM.Temperature = 0.7
	want.CacheCapacity = 4

	require.NoError(t, svc.Save(want))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSettingsService_SaveKeepsStoredAPIKey(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{KeyLLMAPIKey: "stored"})
	svc := NewSettingsService(store, nil)

	require.NoError(t, svc.Save(domain.DefaultSettings()))
	assert.Equal(t, "stored", store.GetString(KeyLLMAPIKey))
}

func TestSettingsService_SaveError(t *testing.T) {
	svc := NewSettingsService(readOnlyConfig{memory.NewConfigStore()}, nil)

	err := svc.Save(domain.DefaultSettings())
	assert.ErrorContains(t, err, KeyDataDir)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-1"))
	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, got.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", got.Embedding.Model)
	assert.Equal(t, "sk-1", got.Embedding.APIKey)

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOllama, "nomic-embed-text", ""))
	got, err = svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", got.Embedding.Model)
	assert.Equal(t, domain.DefaultOllamaURL, got.Embedding.BaseURL)
}

func TestSettingsService_SetProviderValidation(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	assert.ErrorIs(t, svc.SetEmbeddingProvider("mistral", "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetEmbeddingProvider(domain.AIProviderGemini, "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetLLMProvider("", "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetLLMProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderGemini, "gemini-1.5-pro", "gm"))
	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderGemini, got.LLM.Provider)
	assert.Equal(t, "gemini-1.5-pro", got.LLM.Model)
	assert.Equal(t, "gm", got.LLM.APIKey)
	assert.Equal(t, domain.DefaultGeneratorTimeout, got.LLM.Timeout)
}

func TestSettingsService_Validate(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)
	assert.NoError(t, svc.Validate())

	svc = NewSettingsService(memory.NewConfigStore(map[string]any{KeyDeletePolicy: "purge"}), nil)
	assert.ErrorIs(t, svc.Validate(), domain.ErrInvalidInput)

	svc = NewSettingsService(memory.NewConfigStore(map[string]any{KeyLLMProvider: "openai"}), nil)
	assert.ErrorIs(t, svc.Validate(), domain.ErrInvalidInput, "openai without a key")
}

func TestSettingsService_ValidateAIConfig(t *testing.T) {
	t.Run("no validator", func(t *testing.T) {
		svc := NewSettingsService(memory.NewConfigStore(), nil)
		assert.NoError(t, svc.ValidateEmbeddingConfig())
		assert.NoError(t, svc.ValidateLLMConfig())
	})

	t.Run("delegates", func(t *testing.T) {
		v := &mockAIValidator{llmErr: domain.ErrGeneratorUnavailable}
		svc := NewSettingsService(memory.NewConfigStore(), v)

		require.NoError(t, svc.ValidateEmbeddingConfig())
		require.NotNil(t, v.embedding)
		assert.Equal(t, "all-minilm", v.embedding.Model)

		assert.ErrorIs(t, svc.ValidateLLMConfig(), domain.ErrGeneratorUnavailable)
		require.NotNil(t, v.llm)
		assert.Equal(t, domain.AIProviderOllama, v.llm.Provider)
	})
}
