// Package imagegen selects and wraps the image generation backend.
// Two engines produce mockup images: the REST engine reuses the shared
// Gemini client, the genai engine goes through Google's official SDK.
package imagegen

import (
	"context"
	"fmt"

	"mocksmith/internal/gemini"
)

// Engine generates or edits a single image. Input is nil for pure
// generation; a non-nil input turns the call into an edit of that image.
type Engine interface {
	GenerateImage(ctx context.Context, prompt string, input *gemini.Image) (*gemini.Image, error)
	Name() string
}

// Config selects and configures an engine.
type Config struct {
	// Kind is "rest" or "genai".
	Kind   string
	APIKey string
	Model  string

	// RESTClient is required for the rest engine.
	RESTClient *gemini.Client
}

// NewEngine creates the configured engine.
func NewEngine(cfg Config) (Engine, error) {
	switch cfg.Kind {
	case "rest", "":
		if cfg.RESTClient == nil {
			return nil, fmt.Errorf("rest image engine requires a gemini client")
		}
		return &RESTEngine{client: cfg.RESTClient}, nil
	case "genai":
		return NewGenAIEngine(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown image engine: %s (valid: rest, genai)", cfg.Kind)
	}
}

// RESTEngine generates images through the shared REST client.
type RESTEngine struct {
	client *gemini.Client
}

// GenerateImage delegates to the REST client.
func (e *RESTEngine) GenerateImage(ctx context.Context, prompt string, input *gemini.Image) (*gemini.Image, error) {
	return e.client.GenerateImage(ctx, prompt, input)
}

// Name returns the engine name.
func (e *RESTEngine) Name() string {
	return fmt.Sprintf("rest:%s", e.client.ImageModel())
}
