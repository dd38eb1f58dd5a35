package mockup

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"mocksmith/internal/imagegen"
	"mocksmith/internal/logging"
)

// Options bounds a Generator.
type Options struct {
	// MaxScreens caps how many screens one description expands into.
	MaxScreens int

	// Concurrency bounds how many screens are generated at once.
	Concurrency int

	// MinCodeLength rejects code responses shorter than this many bytes.
	MinCodeLength int
}

// DefaultOptions returns the options used when a field is zero.
func DefaultOptions() Options {
	return Options{
		MaxScreens:    6,
		Concurrency:   3,
		MinCodeLength: 40,
	}
}

// Generator orchestrates screen planning and per-screen generation.
type Generator struct {
	llm    TextClient
	images imagegen.Engine
	opts   Options
}

// NewGenerator creates a Generator. Zero option fields fall back to defaults.
func NewGenerator(llm TextClient, images imagegen.Engine, opts Options) *Generator {
	def := DefaultOptions()
	if opts.MaxScreens <= 0 {
		opts.MaxScreens = def.MaxScreens
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = def.Concurrency
	}
	if opts.MinCodeLength <= 0 {
		opts.MinCodeLength = def.MinCodeLength
	}
	return &Generator{llm: llm, images: images, opts: opts}
}

// screenResult is the slot one screen's goroutine fills.
type screenResult struct {
	screen  Screen
	failure *Failure
}

// GenerateBatch runs the full pipeline for one description: plan screens,
// fan out per-screen generation, and aggregate partial successes. A failed
// screen never aborts its siblings; successes come back in plan order. When
// every screen fails, an aggregate error is returned alongside the failures.
func (g *Generator) GenerateBatch(ctx context.Context, description string) (*Batch, error) {
	plans, err := g.PlanScreens(ctx, description)
	if err != nil {
		return nil, err
	}

	timer := logging.StartTimer(logging.CategoryGeneration, "GenerateBatch")
	defer timer.StopWithInfo()

	results := make([]screenResult, len(plans))

	// Task funcs always return nil: errgroup is used only for the bounded
	// fan-out, never for its cancel-on-error behavior.
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.opts.Concurrency)
	for i, plan := range plans {
		grp.Go(func() error {
			results[i] = g.generateScreen(gctx, description, plan)
			return nil
		})
	}
	_ = grp.Wait()

	batch := &Batch{}
	for _, res := range results {
		if res.failure != nil {
			batch.Failures = append(batch.Failures, *res.failure)
			continue
		}
		batch.Screens = append(batch.Screens, res.screen)
	}

	logging.Generation("batch done: %d ok, %d failed", len(batch.Screens), len(batch.Failures))

	if len(batch.Screens) == 0 {
		reasons := make([]string, len(batch.Failures))
		for i, f := range batch.Failures {
			reasons[i] = fmt.Sprintf("%s: %s", f.Screen, f.Reason)
		}
		return batch, fmt.Errorf("all %d screens failed: %s", len(plans), strings.Join(reasons, "; "))
	}
	return batch, nil
}

// generateScreen issues the mockup image request and both code requests
// concurrently. If any of the three fails the whole screen is classified as
// failed with that reason.
func (g *Generator) generateScreen(ctx context.Context, description string, plan ScreenPlan) screenResult {
	var (
		wg        sync.WaitGroup
		image     Screen
		imageErr  error
		reactErr  error
		htmlErr   error
		reactCode string
		htmlCode  string
	)
	image.Title = plan.Name

	wg.Add(3)
	go func() {
		defer wg.Done()
		img, err := g.images.GenerateImage(ctx, imagePrompt(description, plan), nil)
		if err != nil {
			imageErr = fmt.Errorf("mockup image: %w", err)
			return
		}
		image.Image = img
	}()
	go func() {
		defer wg.Done()
		raw, err := g.llm.Complete(ctx, codeSystemPrompt, reactPrompt(description, plan))
		if err == nil {
			reactCode, err = normalizeCode(raw, g.opts.MinCodeLength)
		}
		if err != nil {
			reactErr = fmt.Errorf("react code: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		raw, err := g.llm.Complete(ctx, codeSystemPrompt, htmlPrompt(description, plan))
		if err == nil {
			htmlCode, err = normalizeCode(raw, g.opts.MinCodeLength)
		}
		if err != nil {
			htmlErr = fmt.Errorf("html code: %w", err)
		}
	}()
	wg.Wait()

	for _, err := range []error{imageErr, reactErr, htmlErr} {
		if err != nil {
			logging.GenerationWarn("screen %q failed: %v", plan.Name, err)
			return screenResult{failure: &Failure{Screen: plan.Name, Reason: err.Error()}}
		}
	}

	image.ReactCode = reactCode
	image.HTMLCode = htmlCode
	return screenResult{screen: image}
}
