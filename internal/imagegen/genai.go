package imagegen

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"mocksmith/internal/gemini"
	"mocksmith/internal/logging"
)

// =============================================================================
// GOOGLE GENAI IMAGE ENGINE
// =============================================================================

// GenAIEngine generates mockup images using Google's official SDK.
type GenAIEngine struct {
	client *genai.Client
	model  string
}

// NewGenAIEngine creates a new GenAI image engine.
func NewGenAIEngine(apiKey, model string) (*GenAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	if model == "" {
		model = "gemini-2.5-flash-image-preview"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIEngine{
		client: client,
		model:  model,
	}, nil
}

// GenerateImage sends the prompt (plus the optional source image) and returns
// the first inline image part of the response.
func (e *GenAIEngine) GenerateImage(ctx context.Context, prompt string, input *gemini.Image) (*gemini.Image, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if input != nil {
		parts = append(parts, genai.NewPartFromBytes(input.Data, input.MimeType))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := e.client.Models.GenerateContent(ctx, e.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("GenAI image generation failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates returned")
	}

	for _, part := range result.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		logging.ImageDebug("[GenAI] inline image received mime=%s bytes=%d", part.InlineData.MIMEType, len(part.InlineData.Data))
		return &gemini.Image{
			MimeType: part.InlineData.MIMEType,
			Data:     part.InlineData.Data,
		}, nil
	}

	return nil, fmt.Errorf("no image returned")
}

// Name returns the engine name.
func (e *GenAIEngine) Name() string {
	return fmt.Sprintf("genai:%s", e.model)
}

// Close closes the GenAI client. The genai SDK client holds no resources
// that need releasing, so this is a no-op.
func (e *GenAIEngine) Close() error {
	return nil
}
