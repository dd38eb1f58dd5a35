// Package mockup turns a natural-language app description into per-screen
// UI mockup images and component code by orchestrating calls to the model.
package mockup

import (
	"context"
	"errors"

	"mocksmith/internal/gemini"
)

// ErrNoScreens is returned when the planner cannot identify any screens in
// the description. Nothing has been generated when this is returned.
var ErrNoScreens = errors.New("no screens could be identified; describe the app's main pages, e.g. \"a login screen, a feed and a profile page\"")

// TextClient is the slice of the model client used for text and
// schema-enforced JSON completions.
type TextClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteWithSchema(ctx context.Context, systemPrompt, userPrompt string, schema map[string]interface{}) (string, error)
}

// ScreenPlan names one screen the description decomposed into.
type ScreenPlan struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose,omitempty"`
}

// Screen is one fully generated screen record.
type Screen struct {
	Title     string        `json:"title"`
	Image     *gemini.Image `json:"-"`
	ReactCode string        `json:"react_code"`
	HTMLCode  string        `json:"html_code"`
}

// Failure records why one screen (or operation) was not generated.
type Failure struct {
	Screen string `json:"screen"`
	Reason string `json:"reason"`
}

// Batch is the outcome of one generation run: successes in plan order plus
// the failures that did not block them.
type Batch struct {
	Screens  []Screen  `json:"screens"`
	Failures []Failure `json:"failures"`
}

// Palette is a primary/secondary/accent hex color triple.
type Palette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}
