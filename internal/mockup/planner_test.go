package mockup

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanScreens(t *testing.T) {
	llm := &fakeLLM{planJSON: planJSON("Login", "Feed")}
	gen := newTestGenerator(llm, &fakeEngine{})

	plans, err := gen.PlanScreens(context.Background(), "a social app")
	require.NoError(t, err)

	want := []ScreenPlan{
		{Name: "Login", Purpose: "test screen"},
		{Name: "Feed", Purpose: "test screen"},
	}
	if diff := cmp.Diff(want, plans); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanScreensDeduplicates(t *testing.T) {
	llm := &fakeLLM{planJSON: planJSON("Login", "login", "Feed", "  ", "Feed")}
	gen := newTestGenerator(llm, &fakeEngine{})

	plans, err := gen.PlanScreens(context.Background(), "an app")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "Login", plans[0].Name)
	assert.Equal(t, "Feed", plans[1].Name)
}

func TestPlanScreensCapsAtMaxScreens(t *testing.T) {
	llm := &fakeLLM{planJSON: planJSON("A", "B", "C", "D", "E")}
	gen := NewGenerator(llm, &fakeEngine{}, Options{MaxScreens: 2, Concurrency: 1, MinCodeLength: 10})

	plans, err := gen.PlanScreens(context.Background(), "an app")
	require.NoError(t, err)
	assert.Len(t, plans, 2)
}

func TestPlanScreensToleratesFencedJSON(t *testing.T) {
	llm := &fakeLLM{planJSON: "```json\n" + planJSON("Home") + "\n```"}
	gen := newTestGenerator(llm, &fakeEngine{})

	plans, err := gen.PlanScreens(context.Background(), "an app")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Home", plans[0].Name)
}

func TestPlanScreensInvalidJSON(t *testing.T) {
	llm := &fakeLLM{planJSON: "here are your screens: login, feed"}
	gen := newTestGenerator(llm, &fakeEngine{})

	_, err := gen.PlanScreens(context.Background(), "an app")
	assert.ErrorContains(t, err, "not valid JSON")
}
