package driven

import "context"

// LLMService is the answer generator.
// Generate either returns generated text or fails; deciding what to show
// the user on failure is the caller's job.
type LLMService interface {
	// Generate produces a completion for the prompt. Implementations honour
	// ctx cancellation, which is how the caller applies its timeout.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the default model name.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures a single generation call.
type GenerateOptions struct {
	// Model overrides the service's default model when non-empty.
	Model string

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// MaxTokens limits the response length. Zero leaves it to the provider.
	MaxTokens int
}
