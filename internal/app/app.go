// Package app assembles the services behind every driving adapter from
// one settings value.
package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/acadrag/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/acadrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/acadrag/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/acadrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
	"github.com/custodia-labs/acadrag/internal/core/services"
	"github.com/custodia-labs/acadrag/internal/logger"
	"github.com/custodia-labs/acadrag/internal/normalisers"
	"github.com/custodia-labs/acadrag/internal/normalisers/pdf"
	"github.com/custodia-labs/acadrag/internal/normalisers/plaintext"
	"github.com/custodia-labs/acadrag/internal/postprocessors"
)

// Environment variables that override stored settings for one process.
const (
	EnvOllamaURL   = "OLLAMA_URL"
	EnvOllamaModel = "OLLAMA_MODEL"
	EnvDataDir     = "ACADRAG_DATA_DIR"
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvGeminiKey   = "GEMINI_API_KEY"
	EnvHTTPAddr    = "ACADRAG_HTTP_ADDR"
	EnvTopK        = "ACADRAG_TOP_K"
)

// App holds the wired services and the resources they own.
type App struct {
	Settings domain.Settings

	Answer   *services.AnswerService
	Ingest   *services.IngestService
	Document *services.DocumentService
	Cache    *services.IndexCache

	db       *sqlite.Store
	embedder driven.EmbeddingService
	llm      driven.LLMService
}

// ApplyEnv overlays environment overrides onto s. lookup is usually
// os.LookupEnv.
func ApplyEnv(s *domain.Settings, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		s.DataDir = v
	}
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		s.HTTPAddr = v
	}
	if v, ok := lookup(EnvTopK); ok {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			s.RAG.TopK = k
		} else {
			logger.Warn("ignoring %s=%q", EnvTopK, v)
		}
	}

	if v, ok := lookup(EnvOllamaURL); ok && v != "" {
		if s.Embedding.Provider == domain.AIProviderOllama {
			s.Embedding.BaseURL = v
		}
		if s.LLM.Provider == domain.AIProviderOllama {
			s.LLM.BaseURL = v
		}
	}
	if v, ok := lookup(EnvOllamaModel); ok && v != "" && s.LLM.Provider == domain.AIProviderOllama {
		s.LLM.Model = v
	}

	keys := map[domain.AIProvider]string{
		domain.AIProviderOpenAI: EnvOpenAIKey,
		domain.AIProviderGemini: EnvGeminiKey,
	}
	if env, ok := keys[s.Embedding.Provider]; ok && s.Embedding.APIKey == "" {
		s.Embedding.APIKey, _ = lookup(env)
	}
	if env, ok := keys[s.LLM.Provider]; ok && s.LLM.APIKey == "" {
		s.LLM.APIKey, _ = lookup(env)
	}
}

// New opens storage and builds every service for settings. promptDir
// holds user prompt overrides; empty uses the built-in prompts only.
func New(ctx context.Context, settings domain.Settings, promptDir string) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	logger.Section("Startup")
	logger.Debug("data dir %s, storage %s", settings.DataDir, settings.Storage)

	db, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}

	a := &App{Settings: settings, db: db}
	if err := a.build(ctx, promptDir); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, promptDir string) error {
	s := a.Settings

	var index driven.IndexStore
	switch s.Storage {
	case domain.StorageSQLite:
		index = a.db.IndexStore()
	default:
		index = file.NewIndexStore(s.DataDir)
	}
	notes := file.NewNotesStore(s.DataDir)
	blobs := file.NewBlobStore(s.DataDir)

	registry := normalisers.NewRegistry(plaintext.New(), pdf.New())

	procs := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(procs)
	pipeline, err := postprocessors.BuildPipeline(procs, s.RAG.PipelineConfig())
	if err != nil {
		return fmt.Errorf("building chunk pipeline: %w", err)
	}

	a.embedder, err = ai.CreateEmbeddingService(ctx, &s.Embedding)
	if err != nil {
		return fmt.Errorf("creating embedding service: %w", err)
	}
	a.llm, err = ai.CreateLLMService(ctx, &s.LLM)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}

	var prompts driven.PromptStore
	if promptDir != "" {
		ps, err := configfile.NewPromptStore(promptDir)
		if err != nil {
			return fmt.Errorf("opening prompts: %w", err)
		}
		prompts = ps
	} else {
		prompts = builtinPrompts{}
	}

	var policy services.EvictionPolicy
	if s.CacheCapacity > 0 {
		policy = services.NewLRUPolicy(s.CacheCapacity)
	}
	a.Cache = services.NewIndexCache(index, policy)

	locks := services.NewKeyedMutex()
	a.Ingest = services.NewIngestService(registry, pipeline, a.embedder, index, notes, a.Cache, locks)
	a.Document = services.NewDocumentService(a.db.DocumentStore(), blobs, notes, a.Ingest, s.DeletePolicy)
	a.Answer = services.NewAnswerService(a.Cache, a.embedder, a.llm, prompts, services.AnswerConfig{
		ContextCharLimit: s.RAG.ContextCharLimit,
		Temperature:      s.LLM.Temperature,
		Timeout:          s.LLM.Timeout,
	})

	logger.Info("embedding %s/%s, generator %s/%s",
		s.Embedding.Provider, s.Embedding.Model, s.LLM.Provider, s.LLM.Model)
	return nil
}

// Ping checks both AI providers are reachable.
func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error
	if err := a.embedder.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err))
	}
	if err := a.llm.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", domain.ErrGeneratorUnavailable, err))
	}
	return errors.Join(errs...)
}

// DBPath returns the registry database path.
func (a *App) DBPath() string {
	return a.db.Path()
}

// Close releases providers and the database.
func (a *App) Close() error {
	var errs []error
	if a.embedder != nil {
		errs = append(errs, a.embedder.Close())
	}
	if a.llm != nil {
		errs = append(errs, a.llm.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

type builtinPrompts struct{}

func (builtinPrompts) Load(name string) (string, error) {
	if p, ok := configfile.DefaultPrompt(name); ok {
		return p, nil
	}
	return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
}

func (builtinPrompts) Reload() {}
