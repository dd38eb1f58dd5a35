package mockup

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paletteLLM returns a fixed palette response.
type paletteLLM struct {
	fakeLLM
	response string
}

func (p *paletteLLM) CompleteWithSchema(_ context.Context, _, _ string, _ map[string]interface{}) (string, error) {
	atomic.AddInt32(&p.schemaCalls, 1)
	return p.response, nil
}

func TestGeneratePalette(t *testing.T) {
	llm := &paletteLLM{response: `{"primary":"#336699","secondary":"#88AACC","accent":"#FF6600"}`}
	gen := newTestGenerator(llm, &fakeEngine{})

	p, err := gen.GeneratePalette(context.Background(), "#336699")
	require.NoError(t, err)
	assert.Equal(t, "#336699", p.Primary)
	assert.Equal(t, "#88aacc", p.Secondary)
	assert.Equal(t, "#ff6600", p.Accent)
}

func TestGeneratePaletteToleratesMissingHash(t *testing.T) {
	llm := &paletteLLM{response: `{"primary":"336699","secondary":"88aacc","accent":"ff6600"}`}
	gen := newTestGenerator(llm, &fakeEngine{})

	p, err := gen.GeneratePalette(context.Background(), "336699")
	require.NoError(t, err)
	assert.Equal(t, "#336699", p.Primary)
}

func TestGeneratePaletteRejectsInvalidField(t *testing.T) {
	cases := map[string]string{
		"shorthand": `{"primary":"#369","secondary":"#88aacc","accent":"#ff6600"}`,
		"word":      `{"primary":"#336699","secondary":"cornflower","accent":"#ff6600"}`,
		"alpha":     `{"primary":"#336699","secondary":"#88aacc","accent":"#ff660080"}`,
		"empty":     `{"primary":"#336699","secondary":"","accent":"#ff6600"}`,
	}
	for name, response := range cases {
		t.Run(name, func(t *testing.T) {
			llm := &paletteLLM{response: response}
			gen := newTestGenerator(llm, &fakeEngine{})

			_, err := gen.GeneratePalette(context.Background(), "#336699")
			assert.ErrorContains(t, err, "invalid hex color")
		})
	}
}

func TestGeneratePaletteRejectsBadBaseColor(t *testing.T) {
	llm := &paletteLLM{response: `{"primary":"#336699","secondary":"#88aacc","accent":"#ff6600"}`}
	gen := newTestGenerator(llm, &fakeEngine{})

	_, err := gen.GeneratePalette(context.Background(), "not-a-color")
	require.ErrorContains(t, err, "base color")
	// The model must not be called for an invalid base color.
	assert.Equal(t, int32(0), atomic.LoadInt32(&llm.schemaCalls))
}
