// Package config loads and validates mocksmith configuration.
// Configuration lives in .mocksmith/config.yaml under the workspace, with
// environment variables taking precedence over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all mocksmith configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Batch generation settings
	Generation GenerationConfig `yaml:"generation"`

	// SQLite storage
	Storage StorageConfig `yaml:"storage"`

	// HTTP server
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the Gemini transport.
type LLMConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	ImageModel      string `yaml:"image_model"`
	ImageEngine     string `yaml:"image_engine"` // rest, genai
	BaseURL         string `yaml:"base_url"`
	Timeout         string `yaml:"timeout"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

// GenerationConfig configures the batch orchestrator.
type GenerationConfig struct {
	// MaxScreens caps how many screens a single description may expand into.
	MaxScreens int `yaml:"max_screens"`

	// Concurrency bounds how many screens are generated at once.
	Concurrency int `yaml:"concurrency"`

	// MinCodeLength rejects model code responses shorter than this many bytes.
	MinCodeLength int `yaml:"min_code_length"`
}

// StorageConfig configures persistence.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Name:    "mocksmith",
		Version: "0.3.0",
		LLM: LLMConfig{
			Model:           "gemini-2.5-flash",
			ImageModel:      "gemini-2.5-flash-image-preview",
			ImageEngine:     "rest",
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
			Timeout:         "2m",
			MaxOutputTokens: 16384,
		},
		Generation: GenerationConfig{
			MaxScreens:    6,
			Concurrency:   3,
			MinCodeLength: 40,
		},
		Storage: StorageConfig{
			DatabasePath: ".mocksmith/mocksmith.db",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  "30s",
			WriteTimeout: "5m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the config path under the given workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".mocksmith", "config.yaml")
}

// Load reads configuration from path, fills defaults for missing values and
// applies environment overrides. A missing file is not an error: defaults
// plus environment are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.fillDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults restores defaults for fields the file left zero-valued.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.LLM.Model == "" {
		c.LLM.Model = def.LLM.Model
	}
	if c.LLM.ImageModel == "" {
		c.LLM.ImageModel = def.LLM.ImageModel
	}
	if c.LLM.ImageEngine == "" {
		c.LLM.ImageEngine = def.LLM.ImageEngine
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = def.LLM.BaseURL
	}
	if c.LLM.Timeout == "" {
		c.LLM.Timeout = def.LLM.Timeout
	}
	if c.LLM.MaxOutputTokens <= 0 {
		c.LLM.MaxOutputTokens = def.LLM.MaxOutputTokens
	}
	if c.Generation.MaxScreens <= 0 {
		c.Generation.MaxScreens = def.Generation.MaxScreens
	}
	if c.Generation.Concurrency <= 0 {
		c.Generation.Concurrency = def.Generation.Concurrency
	}
	if c.Generation.MinCodeLength <= 0 {
		c.Generation.MinCodeLength = def.Generation.MinCodeLength
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = def.Storage.DatabasePath
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("MOCKSMITH_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("MOCKSMITH_IMAGE_MODEL"); v != "" {
		c.LLM.ImageModel = v
	}
	if v := os.Getenv("MOCKSMITH_IMAGE_ENGINE"); v != "" {
		c.LLM.ImageEngine = v
	}
	if v := os.Getenv("MOCKSMITH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MOCKSMITH_DB"); v != "" {
		c.Storage.DatabasePath = v
	}
}

// Validate checks structural invariants that Load cannot default away.
func (c *Config) Validate() error {
	switch c.LLM.ImageEngine {
	case "rest", "genai":
	default:
		return fmt.Errorf("invalid image_engine %q (valid: rest, genai)", c.LLM.ImageEngine)
	}
	if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
		return fmt.Errorf("invalid llm timeout %q: %w", c.LLM.Timeout, err)
	}
	if _, err := time.ParseDuration(c.Server.ReadTimeout); err != nil {
		return fmt.Errorf("invalid server read_timeout %q: %w", c.Server.ReadTimeout, err)
	}
	if _, err := time.ParseDuration(c.Server.WriteTimeout); err != nil {
		return fmt.Errorf("invalid server write_timeout %q: %w", c.Server.WriteTimeout, err)
	}
	return nil
}

// LLMTimeout returns the parsed transport timeout.
func (c *Config) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// ServerTimeouts returns the parsed read and write timeouts.
func (c *Config) ServerTimeouts() (read, write time.Duration) {
	read, err := time.ParseDuration(c.Server.ReadTimeout)
	if err != nil {
		read = 30 * time.Second
	}
	write, err = time.ParseDuration(c.Server.WriteTimeout)
	if err != nil {
		write = 5 * time.Minute
	}
	return read, write
}

// Save writes the config back to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
