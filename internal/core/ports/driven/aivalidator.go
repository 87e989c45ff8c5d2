package driven

import "github.com/custodia-labs/acadrag/internal/core/domain"

// AIConfigValidator checks that a provider configuration can reach its service.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider described by config.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the generator described by config.
	ValidateLLM(config *domain.LLMSettings) error
}
