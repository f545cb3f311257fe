package shelf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/pkg/models"
)

func TestResolveSettingsEmptyInputGivesDefaults(t *testing.T) {
	got := ResolveSettings(models.ShelfSettings{})

	assert.Equal(t, DefaultSettings(), got)
}

func TestResolveSettingsIsPure(t *testing.T) {
	in := models.ShelfSettings{
		Background:         "#000000",
		BackgroundType:     models.BackgroundGradient,
		BackgroundGradient: &models.Gradient{Type: "linear", Colors: []string{"#111", "#222"}},
		BookendBackground:  &models.BookendBackground{Show: true, Color: "#333", Opacity: 0.5},
	}

	out := ResolveSettings(in)
	out.BackgroundGradient.Colors[0] = "mutated"
	out.BookendBackground.Color = "mutated"

	assert.Equal(t, "#111", in.BackgroundGradient.Colors[0], "input must not share memory with output")
	assert.Equal(t, "#333", in.BookendBackground.Color)
}

func TestResolveSettingsRepeatedCallsAgree(t *testing.T) {
	in := models.ShelfSettings{Background: "#123456", Texture: "wood"}

	first := ResolveSettings(in)
	second := ResolveSettings(in)

	assert.Equal(t, first, second)
}

func TestResolveSettingsBackgroundFallbacks(t *testing.T) {
	// Type says image but no image was given: fall back to color.
	got := ResolveSettings(models.ShelfSettings{BackgroundType: models.BackgroundImage})
	assert.Equal(t, models.BackgroundColor, got.BackgroundType)

	// Type says gradient but no gradient: same fallback.
	got = ResolveSettings(models.ShelfSettings{BackgroundType: models.BackgroundGradient})
	assert.Equal(t, models.BackgroundColor, got.BackgroundType)

	// With the payload present, the type sticks.
	got = ResolveSettings(models.ShelfSettings{
		BackgroundType:     models.BackgroundGradient,
		BackgroundGradient: &models.Gradient{Type: "linear", Colors: []string{"#a", "#b"}},
	})
	assert.Equal(t, models.BackgroundGradient, got.BackgroundType)
}

func TestResolveSettingsDecorationPositions(t *testing.T) {
	got := ResolveSettings(models.ShelfSettings{
		Decorations: []models.Decoration{
			{Value: "cat"},
			{Value: "plant"},
			{Value: "dropped"},
		},
	})

	require.Len(t, got.Decorations, MaxDecorations)
	assert.Equal(t, models.PositionLeft, got.Decorations[0].Position)
	assert.Equal(t, models.PositionRight, got.Decorations[1].Position)
	assert.Equal(t, models.DecorationIcon, got.Decorations[0].Type)
}

func TestResolveSettingsDecorationExplicitFieldsKept(t *testing.T) {
	got := ResolveSettings(models.ShelfSettings{
		Decorations: []models.Decoration{
			{Type: models.DecorationImage, Value: "data:image/png;...", Position: models.PositionRight},
		},
	})

	require.Len(t, got.Decorations, 1)
	assert.Equal(t, models.DecorationImage, got.Decorations[0].Type)
	assert.Equal(t, models.PositionRight, got.Decorations[0].Position)
}

func TestResolveSettingsLegacyStringDecorations(t *testing.T) {
	// Old clients stored decorations as bare icon-name strings.
	var in models.ShelfSettings
	raw := `{"decorations":["cat","plant"]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &in))

	got := ResolveSettings(in)

	require.Len(t, got.Decorations, 2)
	assert.Equal(t, "cat", got.Decorations[0].Value)
	assert.Equal(t, models.DecorationIcon, got.Decorations[0].Type)
	assert.Equal(t, models.PositionLeft, got.Decorations[0].Position)
	assert.Equal(t, models.PositionRight, got.Decorations[1].Position)
}

func TestResolveSettingsBookendClampAndDefaults(t *testing.T) {
	got := ResolveSettings(models.ShelfSettings{
		BookendBackground: &models.BookendBackground{Show: true, Opacity: 3},
	})
	assert.Equal(t, DefaultBookendColor, got.BookendBackground.Color)
	assert.Equal(t, 1.0, got.BookendBackground.Opacity)

	got = ResolveSettings(models.ShelfSettings{
		BookendBackground: &models.BookendBackground{Show: false, Color: "#abc", Opacity: -1},
	})
	assert.False(t, got.BookendBackground.Show)
	assert.Equal(t, "#abc", got.BookendBackground.Color)
	assert.Equal(t, 0.0, got.BookendBackground.Opacity)
}
