package mockup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mocksmith/internal/logging"
)

var screenPlanSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"screens": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":    map[string]interface{}{"type": "string"},
					"purpose": map[string]interface{}{"type": "string"},
				},
				"required": []string{"name"},
			},
		},
	},
	"required": []string{"screens"},
}

type screenPlanEnvelope struct {
	Screens []ScreenPlan `json:"screens"`
}

// PlanScreens decomposes the description into named screens. It fails fast
// with ErrNoScreens before any generation call when the model identifies
// nothing usable.
func (g *Generator) PlanScreens(ctx context.Context, description string) ([]ScreenPlan, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrNoScreens
	}

	timer := logging.StartTimer(logging.CategoryGeneration, "PlanScreens")
	defer timer.Stop()

	raw, err := g.llm.CompleteWithSchema(ctx, plannerSystemPrompt, plannerPrompt(description, g.opts.MaxScreens), screenPlanSchema)
	if err != nil {
		return nil, fmt.Errorf("screen planning failed: %w", err)
	}

	var envelope screenPlanEnvelope
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &envelope); err != nil {
		return nil, fmt.Errorf("screen plan is not valid JSON: %w", err)
	}

	plans := make([]ScreenPlan, 0, len(envelope.Screens))
	seen := make(map[string]bool)
	for _, plan := range envelope.Screens {
		plan.Name = strings.TrimSpace(plan.Name)
		plan.Purpose = strings.TrimSpace(plan.Purpose)
		if plan.Name == "" {
			continue
		}
		key := strings.ToLower(plan.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		plans = append(plans, plan)
		if len(plans) == g.opts.MaxScreens {
			break
		}
	}

	if len(plans) == 0 {
		return nil, ErrNoScreens
	}

	logging.Generation("planned %d screens", len(plans))
	return plans, nil
}
