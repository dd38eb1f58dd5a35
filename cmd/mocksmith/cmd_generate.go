package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"mocksmith/internal/mockup"
)

var (
	outputDir string
	baseColor string
)

// generateCmd runs a one-shot batch and writes the results to disk
var generateCmd = &cobra.Command{
	Use:   "generate [description]",
	Short: "Generate screen mockups from an app description",
	Long: `Expands the description into named screens and generates a mockup image
plus React and HTML code for each. Results are written to the output
directory as NN_name.png, NN_name.tsx and NN_name.html.

Example:
  mocksmith generate "a recipe sharing app with social features" -o ./mockups`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&outputDir, "out", "o", "mockups", "Output directory for generated files")
	generateCmd.Flags().StringVar(&baseColor, "base-color", "", "Base hex color to derive a palette from")
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

func screenFilename(position int, title string) string {
	name := unsafeFilename.ReplaceAllString(strings.ToLower(title), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "screen"
	}
	return fmt.Sprintf("%02d_%s", position+1, name)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	description := strings.Join(args, " ")

	var palette *mockup.Palette
	if baseColor != "" {
		palette, err = gen.GeneratePalette(ctx, baseColor)
		if err != nil {
			return err
		}
		fmt.Printf("Palette: primary %s, secondary %s, accent %s\n",
			palette.Primary, palette.Secondary, palette.Accent)
	}

	fmt.Printf("Generating mockups for: %s\n", description)
	batch, err := gen.GenerateBatch(ctx, description)
	if err != nil {
		if batch != nil {
			printFailures(batch)
		}
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for i, screen := range batch.Screens {
		base := filepath.Join(outputDir, screenFilename(i, screen.Title))
		if screen.Image != nil {
			if err := writeScreenFile(base+imageExt(screen.Image.MimeType), screen.Image.Data); err != nil {
				return err
			}
		}
		if err := writeScreenFile(base+".tsx", []byte(screen.ReactCode)); err != nil {
			return err
		}
		if err := writeScreenFile(base+".html", []byte(screen.HTMLCode)); err != nil {
			return err
		}
		fmt.Printf("  ✓ %s\n", screen.Title)
	}

	printFailures(batch)
	fmt.Printf("Wrote %d screen(s) to %s\n", len(batch.Screens), outputDir)
	return nil
}

func writeScreenFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func imageExt(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func printFailures(batch *mockup.Batch) {
	for _, f := range batch.Failures {
		fmt.Printf("  ✗ %s: %s\n", f.Screen, f.Reason)
	}
}
