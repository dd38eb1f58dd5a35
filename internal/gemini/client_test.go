package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	cfg.Timeout = 5 * time.Second
	cfg.RequestsPerSecond = 1000
	return NewClientWithConfig(cfg)
}

func textResponse(text string) []byte {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{{
			"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
				"role":  "model",
			},
			"finishReason": "STOP",
		}},
	}
	data, _ := json.Marshal(resp)
	return data
}

func TestComplete(t *testing.T) {
	var captured Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write(textResponse("hello"))
	})

	out, err := client.Complete(context.Background(), "system", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "user prompt", captured.Contents[0].Parts[0].Text)
	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "system", captured.SystemInstruction.Parts[0].Text)
}

func TestCompleteWithSchemaRequestShape(t *testing.T) {
	var captured Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write(textResponse(`{"screens":[]}`))
	})

	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"screens": map[string]interface{}{"type": "array"},
		},
	}
	_, err := client.CompleteWithSchema(context.Background(), "", "plan it", schema)
	require.NoError(t, err)

	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)
	require.NotNil(t, captured.GenerationConfig.ResponseSchema)
	assert.Equal(t, "object", captured.GenerationConfig.ResponseSchema["type"])
}

func TestCompleteWithSchemaRejectsEmptySchema(t *testing.T) {
	client := NewClient("key")
	_, err := client.CompleteWithSchema(context.Background(), "", "x", nil)
	assert.ErrorContains(t, err, "schema is empty")
}

func TestGenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	var captured Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": "here you go"},
						{"inlineData": map[string]interface{}{
							"mimeType": "image/png",
							"data":     base64.StdEncoding.EncodeToString(png),
						}},
					},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	})

	img, err := client.GenerateImage(context.Background(), "a login screen", nil)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, png, img.Data)

	require.Len(t, captured.Contents[0].Parts, 1)
	assert.Equal(t, []string{"TEXT", "IMAGE"}, captured.GenerationConfig.ResponseModalities)
}

func TestGenerateImageAttachesInput(t *testing.T) {
	source := []byte("jpeg-bytes")
	var captured Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"inlineData": map[string]interface{}{
							"mimeType": "image/png",
							"data":     base64.StdEncoding.EncodeToString([]byte("edited")),
						}},
					},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	})

	_, err := client.GenerateImage(context.Background(), "make it dark mode", &Image{
		MimeType: "image/jpeg",
		Data:     source,
	})
	require.NoError(t, err)

	require.Len(t, captured.Contents[0].Parts, 2)
	inline := captured.Contents[0].Parts[1].InlineData
	require.NotNil(t, inline)
	assert.Equal(t, "image/jpeg", inline.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(source), inline.Data)
}

func TestGenerateImageNoImageInResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(textResponse("sorry, text only"))
	})

	_, err := client.GenerateImage(context.Background(), "a screen", nil)
	assert.ErrorContains(t, err, "no image returned")
}

func TestRetryOn429(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(textResponse("recovered"))
	})

	out, err := client.Complete(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAPIErrorIsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"invalid argument"}}`))
	})

	_, err := client.Complete(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.Complete(context.Background(), "", "hi")
	assert.ErrorContains(t, err, "no completion returned")
}

func TestMissingAPIKey(t *testing.T) {
	client := NewClient("")
	_, err := client.Complete(context.Background(), "", "hi")
	assert.ErrorContains(t, err, "API key not configured")
}
