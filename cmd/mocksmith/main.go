package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mocksmith/internal/config"
	"mocksmith/internal/gemini"
	"mocksmith/internal/imagegen"
	"mocksmith/internal/logging"
	"mocksmith/internal/mockup"
)

const version = "0.3.0"

var (
	// Global flags
	verbose   bool
	apiKey    string
	workspace string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mocksmith",
	Short: "mocksmith - app description to screen mockups via Gemini",
	Long: `mocksmith turns a free-text app description into a set of named screens,
then generates a mockup image plus React and HTML code for each screen in
parallel. Partial failures are reported per screen without aborting the batch.

Run 'mocksmith serve' for the HTTP API or 'mocksmith generate' for a one-shot
batch written to disk.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; environment beats file config either way
		_ = godotenv.Load()

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(resolveWorkspace()); err != nil {
			return fmt.Errorf("failed to initialize file logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// versionCmd prints the release version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mocksmith version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mocksmith %s\n", version)
	},
}

func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// loadConfig reads workspace config and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.DefaultPath(resolveWorkspace()))
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("no API key configured: set GEMINI_API_KEY or pass --api-key")
	}
	return cfg, nil
}

// buildGenerator wires the Gemini client, image engine and orchestrator.
func buildGenerator(cfg *config.Config) (*mockup.Generator, error) {
	client := gemini.NewClientWithConfig(gemini.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		ImageModel:      cfg.LLM.ImageModel,
		Timeout:         cfg.LLMTimeout(),
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	})

	engine, err := imagegen.NewEngine(imagegen.Config{
		Kind:       cfg.LLM.ImageEngine,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.ImageModel,
		RESTClient: client,
	})
	if err != nil {
		return nil, err
	}
	logging.Boot("image engine: %s", engine.Name())

	return mockup.NewGenerator(client, engine, mockup.Options{
		MaxScreens:    cfg.Generation.MaxScreens,
		Concurrency:   cfg.Generation.Concurrency,
		MinCodeLength: cfg.Generation.MinCodeLength,
	}), nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current directory)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(paletteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
