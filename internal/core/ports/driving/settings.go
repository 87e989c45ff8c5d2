package driving

import "github.com/custodia-labs/acadrag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns current settings: stored values over defaults.
	Get() (domain.Settings, error)

	// Save persists settings.
	Save(settings domain.Settings) error

	// SetEmbeddingProvider switches the embedding provider. An empty model
	// selects the provider's default model.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider switches the answer generator. An empty model
	// selects the provider's default model.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the stored settings without contacting providers.
	Validate() error

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig pings the configured generator.
	ValidateLLMConfig() error
}
