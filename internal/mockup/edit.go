package mockup

import (
	"context"
	"fmt"
	"strings"

	"mocksmith/internal/gemini"
	"mocksmith/internal/logging"
)

var editableMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// EditImage applies the instruction to the supplied image and returns the
// edited image bytes. Validation failures are reported before the model is
// called.
func (g *Generator) EditImage(ctx context.Context, img *gemini.Image, instruction string) (*gemini.Image, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, fmt.Errorf("no image supplied")
	}
	if !editableMimeTypes[img.MimeType] {
		return nil, fmt.Errorf("unsupported image type %q (supported: png, jpeg, webp)", img.MimeType)
	}
	if strings.TrimSpace(instruction) == "" {
		return nil, fmt.Errorf("edit instruction is empty")
	}

	timer := logging.StartTimer(logging.CategoryImage, "EditImage")
	defer timer.Stop()

	edited, err := g.images.GenerateImage(ctx, editPrompt(instruction), img)
	if err != nil {
		return nil, fmt.Errorf("image edit failed: %w", err)
	}
	return edited, nil
}
