package gemini

import "time"

const defaultSystemPrompt = "You are a senior mobile product designer and front-end engineer. Ground every answer only in the user's app description. Be precise and do not add commentary outside the requested output."

// Config holds configuration for the Gemini client.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	ImageModel      string
	Timeout         time.Duration
	MaxOutputTokens int
	// RequestsPerSecond paces outbound calls; zero uses the default.
	RequestsPerSecond float64
}

// Content represents content in the request.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part represents a part of the content. Exactly one field is set.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries base64-encoded media bytes.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// GenerationConfig represents generation parameters.
type GenerationConfig struct {
	Temperature        float64                `json:"temperature,omitempty"`
	MaxOutputTokens    int                    `json:"maxOutputTokens,omitempty"`
	ResponseMimeType   string                 `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]interface{} `json:"responseJsonSchema,omitempty"`
	ResponseModalities []string               `json:"responseModalities,omitempty"`
}

// Request represents the generateContent request body.
type Request struct {
	Contents          []Content        `json:"contents"`
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
	GenerationConfig  GenerationConfig `json:"generationConfig,omitempty"`
}

// Response represents the generateContent response body.
type Response struct {
	Candidates []struct {
		Content struct {
			Parts []ResponsePart `json:"parts"`
			Role  string         `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// ResponsePart represents a part of the response content.
type ResponsePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// Image is a decoded inline image returned by or sent to the model.
type Image struct {
	MimeType string
	Data     []byte
}
