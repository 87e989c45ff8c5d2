package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGemini
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects where per-user indexes and the document registry live.
type StorageBackend string

const (
	// StorageFile keeps indexes as files under the data directory.
	StorageFile StorageBackend = "file"

	// StorageSQLite keeps indexes and the registry in one SQLite database.
	StorageSQLite StorageBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageFile || b == StorageSQLite
}

// DeletePolicy decides what happens to indexed chunks when a document is deleted.
type DeletePolicy string

const (
	// DeleteRetain removes the file and registry entry but leaves the
	// document's chunks in the user's index.
	DeleteRetain DeletePolicy = "retain"

	// DeleteRebuild rebuilds the user's index from the remaining documents.
	DeleteRebuild DeletePolicy = "rebuild"
)

// IsValid returns true if the policy is recognised.
func (p DeletePolicy) IsValid() bool {
	return p == DeleteRetain || p == DeleteRebuild
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	APIKey string

	// RequestsPerSecond throttles calls to remote providers. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	return !e.Provider.RequiresAPIKey() || e.APIKey != ""
}

// LLMSettings holds answer generator configuration.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// Temperature is the sampling temperature sent with every request.
	Temperature float64

	// Timeout bounds each generation call.
	Timeout time.Duration
}

// IsConfigured returns true if the generator is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	return !l.Provider.RequiresAPIKey() || l.APIKey != ""
}

// RAGSettings holds chunking and retrieval parameters.
type RAGSettings struct {
	// MaxChunkLen is the maximum chunk length in characters.
	MaxChunkLen int

	// ContextCharLimit caps each retrieved chunk placed in the prompt.
	ContextCharLimit int

	// TopK is the default number of chunks retrieved per question.
	TopK int
}

// Settings holds all application settings.
type Settings struct {
	// DataDir is the root of per-user storage.
	DataDir string

	Storage StorageBackend

	Embedding EmbeddingSettings
	LLM       LLMSettings
	RAG       RAGSettings

	// CacheCapacity bounds the number of cached user indexes. Zero means unbounded.
	CacheCapacity int

	DeletePolicy DeletePolicy

	// HTTPAddr is the listen address for `acadrag serve`.
	HTTPAddr string
}

// Default values.
const (
	DefaultMaxChunkLen      = 600
	DefaultContextCharLimit = 400
	DefaultTopK             = 3
	DefaultTemperature      = 0.2
	DefaultGeneratorTimeout = 60 * time.Second
	DefaultOllamaURL        = "http://localhost:11434"
	DefaultHTTPAddr         = ":8080"
)

// DefaultSettings returns settings for a local Ollama setup.
func DefaultSettings() Settings {
	return Settings{
		DataDir: "data",
		Storage: StorageFile,
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
			BaseURL:  DefaultOllamaURL,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOllama,
			Model:       DefaultLLMModels()[AIProviderOllama],
			BaseURL:     DefaultOllamaURL,
			Temperature: DefaultTemperature,
			Timeout:     DefaultGeneratorTimeout,
		},
		RAG: RAGSettings{
			MaxChunkLen:      DefaultMaxChunkLen,
			ContextCharLimit: DefaultContextCharLimit,
			TopK:             DefaultTopK,
		},
		DeletePolicy: DeleteRetain,
		HTTPAddr:     DefaultHTTPAddr,
	}
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	switch {
	case s.DataDir == "":
		return fmt.Errorf("%w: data directory is empty", ErrInvalidInput)
	case !s.Storage.IsValid():
		return fmt.Errorf("%w: storage backend %q", ErrInvalidInput, s.Storage)
	case !s.Embedding.IsConfigured():
		return fmt.Errorf("%w: embedding provider %q is not configured", ErrInvalidInput, s.Embedding.Provider)
	case !s.LLM.IsConfigured():
		return fmt.Errorf("%w: generator provider %q is not configured", ErrInvalidInput, s.LLM.Provider)
	case s.RAG.MaxChunkLen <= 0:
		return fmt.Errorf("%w: max chunk length must be positive", ErrInvalidInput)
	case s.RAG.ContextCharLimit <= 0:
		return fmt.Errorf("%w: context char limit must be positive", ErrInvalidInput)
	case s.LLM.Timeout <= 0:
		return fmt.Errorf("%w: generator timeout must be positive", ErrInvalidInput)
	case s.CacheCapacity < 0:
		return fmt.Errorf("%w: cache capacity must not be negative", ErrInvalidInput)
	case !s.DeletePolicy.IsValid():
		return fmt.Errorf("%w: delete policy %q", ErrInvalidInput, s.DeletePolicy)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderGemini}
}

// AllLLMProviders returns providers that can generate answers.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderGemini}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each generator provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "gemma:2b-instruct",
		AIProviderOpenAI: "gpt-4o-mini",
		AIProviderGemini: "gemini-1.5-flash",
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfig returns the chunking pipeline for these RAG settings.
func (r RAGSettings) PipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {"max_len": r.MaxChunkLen},
		},
	}
}
