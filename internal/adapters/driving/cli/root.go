// Package cli implements the acadrag command line.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/acadrag/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/acadrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/acadrag/internal/app"
	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
	"github.com/custodia-labs/acadrag/internal/core/ports/driving"
	"github.com/custodia-labs/acadrag/internal/core/services"
	"github.com/custodia-labs/acadrag/internal/logger"
)

// EnvUser names the user when --user is not given.
const EnvUser = "ACADRAG_USER"

// DefaultUser is used when neither --user nor ACADRAG_USER is set.
const DefaultUser = "default"

// annotationServices marks commands that need the core services.
const annotationServices = "services"

var version = "dev"

var (
	cfgFile  string
	verbose  bool
	userFlag string
)

// Services used by commands. Tests set these directly; otherwise they are
// built from settings before a command that needs them runs.
var (
	answerService   driving.AnswerService
	documentService driving.DocumentService
	settingsService driving.SettingsService
	configStore     driven.ConfigStore

	// settings are the effective settings: stored values with
	// environment overrides applied.
	settings domain.Settings

	// pingProviders checks the AI providers when services were built here.
	pingProviders func() error

	closeServices func() error
)

var rootCmd = &cobra.Command{
	Use:   "acadrag",
	Short: "Ask questions about your own study notes",
	Long: `acadrag indexes the PDFs and text notes you upload, per user, and answers
questions from the closest passages using a local or hosted language model.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.acadrag/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "user id (default $"+EnvUser+" or "+DefaultUser+")")
}

// Execute runs the root command and releases any services it opened.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := teardown(); err == nil {
		err = cerr
	}
	return err
}

// SetVersion sets the version reported by `acadrag version` and the API.
func SetVersion(v string) {
	version = v
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedType):
		return 2
	case errors.Is(err, domain.ErrNotFound):
		return 3
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrGeneratorUnavailable):
		return 4
	default:
		return 1
	}
}

// needsServices marks cmd as running against the core services.
func needsServices(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationServices] = "true"
	return cmd
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	if settingsService == nil {
		store, err := openConfigStore()
		if err != nil {
			return fmt.Errorf("opening config: %w", err)
		}
		configStore = store
		settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	app.ApplyEnv(&s, os.LookupEnv)
	settings = s

	if cmd.Annotations[annotationServices] != "true" || answerService != nil {
		return nil
	}

	a, err := app.New(cmd.Context(), settings, promptDir())
	if err != nil {
		return err
	}
	answerService = a.Answer
	documentService = a.Document
	pingProviders = func() error { return a.Ping(cmd.Context()) }
	closeServices = func() error {
		answerService, documentService, pingProviders = nil, nil, nil
		return a.Close()
	}
	return nil
}

func teardown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

func openConfigStore() (*configfile.ConfigStore, error) {
	if cfgFile != "" {
		return configfile.NewConfigStoreAt(cfgFile)
	}
	return configfile.NewConfigStore("")
}

// promptDir is the prompts folder next to the config file.
func promptDir() string {
	if configStore == nil {
		return ""
	}
	return filepath.Join(filepath.Dir(configStore.Path()), "prompts")
}

// currentUser resolves the acting user from --user, then ACADRAG_USER.
func currentUser() (string, error) {
	user := userFlag
	if user == "" {
		user = os.Getenv(EnvUser)
	}
	if user == "" {
		user = DefaultUser
	}
	if err := domain.ValidateUserID(user); err != nil {
		return "", fmt.Errorf("user %q: %w", user, err)
	}
	return user, nil
}

func topKOrDefault(k int) int {
	if k > 0 {
		return k
	}
	if settings.RAG.TopK > 0 {
		return settings.RAG.TopK
	}
	return domain.DefaultTopK
}
