// Package gemini implements the REST transport for the Gemini generateContent
// API: text completions, schema-enforced JSON output and inline image
// generation/editing.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mocksmith/internal/logging"
)

// Client calls the Gemini API over REST.
type Client struct {
	apiKey          string
	baseURL         string
	model           string
	imageModel      string
	maxOutputTokens int
	httpClient      *http.Client
	limiter         *rate.Limiter
}

// DefaultConfig returns sensible defaults for the given API key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:            apiKey,
		BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
		Model:             "gemini-2.5-flash",
		ImageModel:        "gemini-2.5-flash-image-preview",
		Timeout:           2 * time.Minute,
		MaxOutputTokens:   16384,
		RequestsPerSecond: 8,
	}
}

// NewClient creates a client with default configuration.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(DefaultConfig(apiKey))
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(cfg Config) *Client {
	def := DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = def.Model
	}
	if strings.TrimSpace(cfg.ImageModel) == "" {
		cfg.ImageModel = def.ImageModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = def.MaxOutputTokens
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}

	return &Client{
		apiKey:          cfg.APIKey,
		baseURL:         cfg.BaseURL,
		model:           cfg.Model,
		imageModel:      cfg.ImageModel,
		maxOutputTokens: cfg.MaxOutputTokens,
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		limiter:         rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Model returns the text model in use.
func (c *Client) Model() string {
	return c.model
}

// ImageModel returns the image model in use.
func (c *Client) ImageModel() string {
	return c.imageModel
}

// Complete sends a prompt and returns the text completion.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := c.textRequest(systemPrompt, userPrompt)
	resp, err := c.generate(ctx, c.model, reqBody, "Complete")
	if err != nil {
		return "", err
	}
	return textOf(resp)
}

// CompleteWithSchema sends a prompt and enforces a JSON schema on the response
// via generationConfig.responseJsonSchema.
func (c *Client) CompleteWithSchema(ctx context.Context, systemPrompt, userPrompt string, schema map[string]interface{}) (string, error) {
	if len(schema) == 0 {
		return "", fmt.Errorf("json schema is empty")
	}

	reqBody := c.textRequest(systemPrompt, userPrompt)
	reqBody.GenerationConfig.ResponseMimeType = "application/json"
	reqBody.GenerationConfig.ResponseSchema = schema

	resp, err := c.generate(ctx, c.model, reqBody, "CompleteWithSchema")
	if err != nil {
		return "", err
	}
	return textOf(resp)
}

// GenerateImage asks the image model for inline image bytes. When input is
// non-nil its bytes are attached to the prompt, which turns the call into an
// edit of the supplied image.
func (c *Client) GenerateImage(ctx context.Context, prompt string, input *Image) (*Image, error) {
	parts := []Part{{Text: prompt}}
	if input != nil {
		parts = append(parts, Part{InlineData: &InlineData{
			MimeType: input.MimeType,
			Data:     base64.StdEncoding.EncodeToString(input.Data),
		}})
	}

	reqBody := Request{
		Contents: []Content{{Role: "user", Parts: parts}},
		GenerationConfig: GenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	resp, err := c.generate(ctx, c.imageModel, reqBody, "GenerateImage")
	if err != nil {
		return nil, err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode inline image data: %w", err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("model returned empty image data")
		}
		return &Image{MimeType: part.InlineData.MimeType, Data: data}, nil
	}
	return nil, fmt.Errorf("no image returned")
}

func (c *Client) textRequest(systemPrompt, userPrompt string) Request {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}
	return Request{
		Contents: []Content{{
			Role:  "user",
			Parts: []Part{{Text: userPrompt}},
		}},
		SystemInstruction: &Content{
			Parts: []Part{{Text: systemPrompt}},
		},
		GenerationConfig: GenerationConfig{
			Temperature:     1.0,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}
}

// generate posts a generateContent request with retry on rate limits and
// transport errors. Non-retryable API errors are returned immediately.
func (c *Client) generate(ctx context.Context, model string, reqBody Request, op string) (*Response, error) {
	// Auto-apply timeout if the caller's context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.APIDebug("[Gemini] %s: model=%s", op, model)

	if c.apiKey == "" {
		logging.APIError("[Gemini] %s: API key not configured", op)
		return nil, fmt.Errorf("API key not configured")
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	const maxRetries = 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			logging.APIWarn("[Gemini] %s: 429, attempt %d/%d", op, i+1, maxRetries+1)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var apiResp Response
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}

		if apiResp.Error != nil {
			return nil, fmt.Errorf("API error: %s", apiResp.Error.Message)
		}

		if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("no completion returned")
		}

		logging.API("[Gemini] %s: completed in %v tokens=%d", op, time.Since(startTime), apiResp.UsageMetadata.TotalTokenCount)
		return &apiResp, nil
	}

	logging.APIError("[Gemini] %s: max retries exceeded after %v: %v", op, time.Since(startTime), lastErr)
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func textOf(resp *Response) (string, error) {
	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		result.WriteString(part.Text)
	}
	text := strings.TrimSpace(result.String())
	if text == "" {
		return "", fmt.Errorf("no text returned")
	}
	return text, nil
}
