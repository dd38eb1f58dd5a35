package mockup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mocksmith/internal/gemini"
)

func TestEditImage(t *testing.T) {
	gen := newTestGenerator(&fakeLLM{}, &fakeEngine{})

	img := &gemini.Image{MimeType: "image/png", Data: []byte("source")}
	edited, err := gen.EditImage(context.Background(), img, "make the header blue")
	require.NoError(t, err)
	assert.NotEmpty(t, edited.Data)
}

func TestEditImageValidation(t *testing.T) {
	eng := &fakeEngine{}
	gen := newTestGenerator(&fakeLLM{}, eng)

	t.Run("nil image", func(t *testing.T) {
		_, err := gen.EditImage(context.Background(), nil, "do it")
		assert.ErrorContains(t, err, "no image supplied")
	})

	t.Run("unsupported mime type", func(t *testing.T) {
		img := &gemini.Image{MimeType: "image/gif", Data: []byte("gif")}
		_, err := gen.EditImage(context.Background(), img, "do it")
		assert.ErrorContains(t, err, "unsupported image type")
	})

	t.Run("empty instruction", func(t *testing.T) {
		img := &gemini.Image{MimeType: "image/png", Data: []byte("png")}
		_, err := gen.EditImage(context.Background(), img, "   ")
		assert.ErrorContains(t, err, "instruction is empty")
	})

	// None of the rejected inputs may reach the engine.
	assert.Equal(t, int32(0), eng.calls)
}
