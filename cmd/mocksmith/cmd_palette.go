package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// paletteCmd derives a palette from a base color
var paletteCmd = &cobra.Command{
	Use:   "palette [base-color]",
	Short: "Derive a primary/secondary/accent palette from a base hex color",
	Long: `Asks the model for a harmonious palette built around the base color.

Example:
  mocksmith palette "#336699"`,
	Args: cobra.ExactArgs(1),
	RunE: runPalette,
}

func runPalette(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}

	palette, err := gen.GeneratePalette(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("primary:   %s\n", palette.Primary)
	fmt.Printf("secondary: %s\n", palette.Secondary)
	fmt.Printf("accent:    %s\n", palette.Accent)
	return nil
}
