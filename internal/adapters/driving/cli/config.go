package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/acadrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change settings. Values are stored in ~/.acadrag/config.toml
(or the file given with --config) and can be overridden per process with
OLLAMA_URL, OLLAMA_MODEL, ACADRAG_DATA_DIR, ACADRAG_HTTP_ADDR, ACADRAG_TOP_K,
OPENAI_API_KEY and GEMINI_API_KEY, also read from a .env file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one effective setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store one setting",
	Example: `  acadrag config set rag.top_k 5
  acadrag config set storage.backend sqlite
  acadrag config set documents.delete_policy rebuild
  acadrag config set llm.timeout 30s`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping the AI providers",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long: `Interactively choose the embedding provider and model.

Changing the embedding model changes the vector size; users indexed with the
old model must re-upload their documents.`,
	RunE: runConfigEmbedding,
}

var configLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the answer generator",
	RunE:  runConfigLLM,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	configCmd.AddCommand(configLLMCmd)
	rootCmd.AddCommand(configCmd)
}

// settingValues flattens settings to config keys. API keys are masked.
func settingValues(s domain.Settings) map[string]string {
	return map[string]string{
		services.KeyDataDir:          s.DataDir,
		services.KeyStorageBackend:   string(s.Storage),
		services.KeyEmbedProvider:    string(s.Embedding.Provider),
		services.KeyEmbedModel:       s.Embedding.Model,
		services.KeyEmbedBaseURL:     s.Embedding.BaseURL,
		services.KeyEmbedAPIKey:      maskAPIKey(s.Embedding.APIKey),
		services.KeyEmbedRPS:         strconv.FormatFloat(s.Embedding.RequestsPerSecond, 'g', -1, 64),
		services.KeyLLMProvider:      string(s.LLM.Provider),
		services.KeyLLMModel:         s.LLM.Model,
		services.KeyLLMBaseURL:       s.LLM.BaseURL,
		services.KeyLLMAPIKey:        maskAPIKey(s.LLM.APIKey),
		services.KeyLLMTemperature:   strconv.FormatFloat(s.LLM.Temperature, 'g', -1, 64),
		services.KeyLLMTimeout:       s.LLM.Timeout.String(),
		services.KeyMaxChunkLen:      strconv.Itoa(s.RAG.MaxChunkLen),
		services.KeyContextCharLimit: strconv.Itoa(s.RAG.ContextCharLimit),
		services.KeyTopK:             strconv.Itoa(s.RAG.TopK),
		services.KeyCacheCapacity:    strconv.Itoa(s.CacheCapacity),
		services.KeyDeletePolicy:     string(s.DeletePolicy),
		services.KeyHTTPAddr:         s.HTTPAddr,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values := settingValues(settings)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		cmd.Printf("%-24s %s\n", k, values[k])
	}
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'acadrag config embedding' or 'acadrag config llm' to fix provider settings.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	v, ok := settingValues(settings)[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil || settingsService == nil {
		return errors.New("config store not configured")
	}
	key, raw := args[0], args[1]

	candidate := settings
	value, err := applySetting(&candidate, key, raw)
	if err != nil {
		return err
	}
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	settings = candidate

	cmd.Printf("%s = %s\n", key, raw)
	return nil
}

// applySetting parses raw for key, writes it into s and returns the value
// to store.
//
//nolint:gocyclo // one case per config key
func applySetting(s *domain.Settings, key, raw string) (any, error) {
	invalid := func(err error) error {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	switch key {
	case services.KeyDataDir:
		s.DataDir = raw
	case services.KeyStorageBackend:
		s.Storage = domain.StorageBackend(raw)
	case services.KeyEmbedProvider:
		s.Embedding.Provider = domain.AIProvider(raw)
	case services.KeyEmbedModel:
		s.Embedding.Model = raw
	case services.KeyEmbedBaseURL:
		s.Embedding.BaseURL = raw
	case services.KeyEmbedAPIKey:
		s.Embedding.APIKey = raw
	case services.KeyLLMProvider:
		s.LLM.Provider = domain.AIProvider(raw)
	case services.KeyLLMModel:
		s.LLM.Model = raw
	case services.KeyLLMBaseURL:
		s.LLM.BaseURL = raw
	case services.KeyLLMAPIKey:
		s.LLM.APIKey = raw
	case services.KeyDeletePolicy:
		s.DeletePolicy = domain.DeletePolicy(raw)
	case services.KeyHTTPAddr:
		s.HTTPAddr = raw
	case services.KeyLLMTimeout:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, invalid(err)
		}
		s.LLM.Timeout = d
	case services.KeyEmbedRPS, services.KeyLLMTemperature:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalid(err)
		}
		if f < 0 {
			return nil, invalid(errors.New("must not be negative"))
		}
		if key == services.KeyEmbedRPS {
			s.Embedding.RequestsPerSecond = f
		} else {
			s.LLM.Temperature = f
		}
		return f, nil
	case services.KeyMaxChunkLen, services.KeyContextCharLimit, services.KeyTopK, services.KeyCacheCapacity:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, invalid(err)
		}
		switch key {
		case services.KeyMaxChunkLen:
			s.RAG.MaxChunkLen = n
		case services.KeyContextCharLimit:
			s.RAG.ContextCharLimit = n
		case services.KeyTopK:
			if n <= 0 {
				return nil, invalid(errors.New("must be positive"))
			}
			s.RAG.TopK = n
		default:
			s.CacheCapacity = n
		}
		return int64(n), nil
	default:
		return nil, fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}
	return raw, nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	fmt.Fprintln(cmd.OutOrStdout(), configStore.Path())
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settings.Validate(); err != nil {
		cmd.Printf("Settings: FAILED: %v\n", err)
		return err
	}
	cmd.Println("Settings: OK")

	var failed []error
	cmd.Printf("Embedding (%s, %s): ", settings.Embedding.Provider, settings.Embedding.Model)
	if err := ai.ValidateEmbeddingConfig(&settings.Embedding); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = append(failed, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err))
	} else {
		cmd.Println("OK")
	}

	cmd.Printf("Generator (%s, %s): ", settings.LLM.Provider, settings.LLM.Model)
	if err := ai.ValidateLLMConfig(&settings.LLM); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = append(failed, fmt.Errorf("%w: %w", domain.ErrGeneratorUnavailable, err))
	} else {
		cmd.Println("OK")
	}

	return errors.Join(failed...)
}

func runConfigEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runConfigLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

// providerChoice asks for a provider, model and API key.
func providerChoice(
	cmd *cobra.Command,
	reader *bufio.Reader,
	title string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (domain.AIProvider, string, string, error) {
	cmd.Println(title)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return "", "", "", fmt.Errorf("%w: API key is required for this provider", domain.ErrInvalidInput)
		}
	}
	return provider, model, apiKey, nil
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	provider, model, apiKey, err := providerChoice(cmd, reader,
		"Select Embedding Provider", domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for the generator - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	provider, model, apiKey, err := providerChoice(cmd, reader,
		"Select Answer Generator", domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure generator: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("generator configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Generator configured: %s (%s)\n", provider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, else a plain line.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
