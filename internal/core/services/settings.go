package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
	"github.com/custodia-labs/acadrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyDataDir          = "data_dir"
	KeyStorageBackend   = "storage.backend"
	KeyEmbedProvider    = "embedding.provider"
	KeyEmbedModel       = "embedding.model"
	KeyEmbedBaseURL     = "embedding.base_url"
	KeyEmbedAPIKey      = "embedding.api_key"
	KeyEmbedRPS         = "embedding.requests_per_second"
	KeyLLMProvider      = "llm.provider"
	KeyLLMModel         = "llm.model"
	KeyLLMBaseURL       = "llm.base_url"
	KeyLLMAPIKey        = "llm.api_key"
	KeyLLMTemperature   = "llm.temperature"
	KeyLLMTimeout       = "llm.timeout"
	KeyMaxChunkLen      = "rag.max_chunk_len"
	KeyContextCharLimit = "rag.context_char_limit"
	KeyTopK             = "rag.top_k"
	KeyCacheCapacity    = "cache.capacity"
	KeyDeletePolicy     = "documents.delete_policy"
	KeyHTTPAddr         = "http.addr"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service. aiValidator may be nil.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (domain.Settings, error) {
	d := domain.DefaultSettings()

	timeout := d.LLM.Timeout
	if raw := s.configStore.GetString(KeyLLMTimeout); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return domain.Settings{}, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, KeyLLMTimeout, err)
		}
		timeout = parsed
	}

	embedProvider := s.getProvider(KeyEmbedProvider, d.Embedding.Provider)
	llmProvider := s.getProvider(KeyLLMProvider, d.LLM.Provider)

	settings := domain.Settings{
		DataDir: s.getString(KeyDataDir, d.DataDir),
		Storage: domain.StorageBackend(s.getString(KeyStorageBackend, string(d.Storage))),
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(KeyEmbedModel, defaultModel(domain.DefaultEmbeddingModels(), embedProvider)),
			BaseURL:           s.getString(KeyEmbedBaseURL, defaultBaseURL(embedProvider)),
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			RequestsPerSecond: s.getFloat(KeyEmbedRPS, d.Embedding.RequestsPerSecond),
		},
		LLM: domain.LLMSettings{
			Provider:    llmProvider,
			Model:       s.getString(KeyLLMModel, defaultModel(domain.DefaultLLMModels(), llmProvider)),
			BaseURL:     s.getString(KeyLLMBaseURL, defaultBaseURL(llmProvider)),
			APIKey:      s.configStore.GetString(KeyLLMAPIKey),
			Temperature: s.getFloat(KeyLLMTemperature, d.LLM.Temperature),
			Timeout:     timeout,
		},
		RAG: domain.RAGSettings{
			MaxChunkLen:      s.getInt(KeyMaxChunkLen, d.RAG.MaxChunkLen),
			ContextCharLimit: s.getInt(KeyContextCharLimit, d.RAG.ContextCharLimit),
			TopK:             s.getInt(KeyTopK, d.RAG.TopK),
		},
		CacheCapacity: s.getInt(KeyCacheCapacity, d.CacheCapacity),
		DeletePolicy:  domain.DeletePolicy(s.getString(KeyDeletePolicy, string(d.DeletePolicy))),
		HTTPAddr:      s.getString(KeyHTTPAddr, d.HTTPAddr),
	}

	return settings, nil
}

type setting struct {
	key   string
	value any
}

// Save persists application settings. Empty API keys are not written,
// so a stored key survives a save from a process that only had it in
// its environment.
func (s *SettingsService) Save(settings domain.Settings) error {
	values := []setting{
		{KeyDataDir, settings.DataDir},
		{KeyStorageBackend, string(settings.Storage)},
		{KeyEmbedProvider, settings.Embedding.Provider.String()},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{KeyLLMProvider, settings.LLM.Provider.String()},
		{KeyLLMModel, settings.LLM.Model},
		{KeyLLMBaseURL, settings.LLM.BaseURL},
		{KeyLLMTemperature, settings.LLM.Temperature},
		{KeyLLMTimeout, settings.LLM.Timeout.String()},
		{KeyMaxChunkLen, settings.RAG.MaxChunkLen},
		{KeyContextCharLimit, settings.RAG.ContextCharLimit},
		{KeyTopK, settings.RAG.TopK},
		{KeyCacheCapacity, settings.CacheCapacity},
		{KeyDeletePolicy, string(settings.DeletePolicy)},
		{KeyHTTPAddr, settings.HTTPAddr},
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, setting{KeyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.LLM.APIKey != "" {
		values = append(values, setting{KeyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: embedding provider %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = defaultModel(domain.DefaultEmbeddingModels(), provider)
	}
	settings.Embedding.BaseURL = defaultBaseURL(provider)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the answer generator.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: generator provider %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = defaultModel(domain.DefaultLLMModels(), provider)
	}
	settings.LLM.BaseURL = defaultBaseURL(provider)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the stored settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current generator configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func defaultModel(models map[domain.AIProvider]string, provider domain.AIProvider) string {
	return models[provider]
}

// defaultBaseURL returns the local endpoint for Ollama. Cloud providers
// use their SDK or client default.
func defaultBaseURL(provider domain.AIProvider) string {
	if provider == domain.AIProviderOllama {
		return domain.DefaultOllamaURL
	}
	return ""
}
