package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mocksmith/internal/gemini"
	"mocksmith/internal/mockup"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "mocksmith.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBatch() *mockup.Batch {
	return &mockup.Batch{
		Screens: []mockup.Screen{
			{
				Title:     "Login",
				Image:     &gemini.Image{MimeType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
				ReactCode: "export default function Login() { return null; }",
				HTMLCode:  "<!DOCTYPE html><html></html>",
			},
			{
				Title:     "Feed",
				Image:     &gemini.Image{MimeType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
				ReactCode: "export default function Feed() { return null; }",
				HTMLCode:  "<!DOCTYPE html><html></html>",
			},
		},
		Failures: []mockup.Failure{{Screen: "Profile", Reason: "mockup image: model overloaded"}},
	}
}

func TestSaveAndGetProject(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	palette := &mockup.Palette{Primary: "#336699", Secondary: "#88aacc", Accent: "#ff6600"}
	id, err := s.SaveProject(ctx, "a social app", sampleBatch(), palette)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	p, err := s.GetProject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a social app", p.Description)

	// Screens come back in the order they were generated.
	require.Len(t, p.Screens, 2)
	assert.Equal(t, "Login", p.Screens[0].Title)
	assert.Equal(t, "Feed", p.Screens[1].Title)
	assert.Equal(t, 0, p.Screens[0].Position)
	assert.Equal(t, "image/png", p.Screens[0].MimeType)
	assert.NotEmpty(t, p.Screens[0].Image)

	require.NotNil(t, p.Palette)
	assert.Equal(t, "#336699", p.Palette.Primary)

	require.Len(t, p.Failures, 1)
	assert.Equal(t, "Profile", p.Failures[0].Screen)
}

func TestSaveProjectWithoutPalette(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveProject(ctx, "no palette", sampleBatch(), nil)
	require.NoError(t, err)

	p, err := s.GetProject(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, p.Palette)
}

func TestGetProjectNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetProject(context.Background(), "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestListProjects(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SaveProject(ctx, "first app", sampleBatch(), nil)
	require.NoError(t, err)
	_, err = s.SaveProject(ctx, "second app", &mockup.Batch{}, nil)
	require.NoError(t, err)

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	for _, ps := range list {
		switch ps.Description {
		case "first app":
			assert.Equal(t, 2, ps.ScreenCount)
		case "second app":
			assert.Equal(t, 0, ps.ScreenCount)
		default:
			t.Fatalf("unexpected project %q", ps.Description)
		}
	}
}
