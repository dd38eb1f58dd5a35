package mockup

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"mocksmith/internal/logging"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var paletteSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"primary":   map[string]interface{}{"type": "string"},
		"secondary": map[string]interface{}{"type": "string"},
		"accent":    map[string]interface{}{"type": "string"},
	},
	"required": []string{"primary", "secondary", "accent"},
}

// normalizeHex validates one hex color, tolerating a missing # prefix.
// Shorthand (#abc) and alpha channels are rejected.
func normalizeHex(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s != "" && !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if !hexColorPattern.MatchString(s) {
		return "", fmt.Errorf("invalid hex color %q", s)
	}
	return strings.ToLower(s), nil
}

// GeneratePalette derives a primary/secondary/accent triple from the base
// color. A single malformed field fails the whole palette rather than
// letting a bad color through.
func (g *Generator) GeneratePalette(ctx context.Context, baseColor string) (*Palette, error) {
	base, err := normalizeHex(baseColor)
	if err != nil {
		return nil, fmt.Errorf("base color: %w", err)
	}

	raw, err := g.llm.CompleteWithSchema(ctx, "", palettePrompt(base), paletteSchema)
	if err != nil {
		return nil, fmt.Errorf("palette generation failed: %w", err)
	}

	var p Palette
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &p); err != nil {
		return nil, fmt.Errorf("palette response is not valid JSON: %w", err)
	}

	if p.Primary, err = normalizeHex(p.Primary); err != nil {
		return nil, fmt.Errorf("palette primary: %w", err)
	}
	if p.Secondary, err = normalizeHex(p.Secondary); err != nil {
		return nil, fmt.Errorf("palette secondary: %w", err)
	}
	if p.Accent, err = normalizeHex(p.Accent); err != nil {
		return nil, fmt.Errorf("palette accent: %w", err)
	}

	logging.Palette("derived palette from %s: %s %s %s", base, p.Primary, p.Secondary, p.Accent)
	return &p, nil
}
