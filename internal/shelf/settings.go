package shelf

import (
	"bookify/pkg/models"
)

// Documented defaults for shelf appearance.
const (
	DefaultBackground   = "#141414"
	DefaultTexture      = "none"
	DefaultShelfColor   = "#8B4513"
	DefaultBookendColor = "#654321"
)

// MaxDecorations caps bookend ornaments at one per end.
const MaxDecorations = 2

// DefaultSettings returns the documented default appearance.
func DefaultSettings() models.ShelfSettings {
	return models.ShelfSettings{
		Background:     DefaultBackground,
		BackgroundType: models.BackgroundColor,
		Texture:        DefaultTexture,
		Color:          DefaultShelfColor,
		Decorations:    []models.Decoration{},
		BookendBackground: &models.BookendBackground{
			Show:    true,
			Color:   DefaultBookendColor,
			Opacity: 1,
		},
	}
}

// ResolveSettings merges a possibly partial or legacy settings object with
// the defaults. It never mutates its input: repeated calls during preview
// rendering always produce the same result as the persisted shelf.
//
// Legacy decoration entries (bare icon-name strings, already lifted into
// Decoration by the JSON decoder) get their position inferred from array
// index: first entry left, second right. At most MaxDecorations entries are
// kept.
func ResolveSettings(in models.ShelfSettings) models.ShelfSettings {
	out := DefaultSettings()

	if in.Background != "" {
		out.Background = in.Background
	}
	if in.BackgroundType != "" {
		out.BackgroundType = in.BackgroundType
	}
	out.BackgroundImage = in.BackgroundImage
	if in.BackgroundGradient != nil {
		g := *in.BackgroundGradient
		g.Colors = append([]string{}, in.BackgroundGradient.Colors...)
		out.BackgroundGradient = &g
	}

	// A background type without its payload falls back to a plain color.
	switch out.BackgroundType {
	case models.BackgroundImage:
		if out.BackgroundImage == "" {
			out.BackgroundType = models.BackgroundColor
		}
	case models.BackgroundGradient:
		if out.BackgroundGradient == nil {
			out.BackgroundType = models.BackgroundColor
		}
	}

	if in.Texture != "" {
		out.Texture = in.Texture
	}
	if in.Color != "" {
		out.Color = in.Color
	}

	for i, d := range in.Decorations {
		if i >= MaxDecorations {
			break
		}
		if d.Type == "" {
			d.Type = models.DecorationIcon
		}
		if d.Position == "" {
			if i == 0 {
				d.Position = models.PositionLeft
			} else {
				d.Position = models.PositionRight
			}
		}
		out.Decorations = append(out.Decorations, d)
	}

	if in.BookendBackground != nil {
		bb := *in.BookendBackground
		if bb.Color == "" {
			bb.Color = DefaultBookendColor
		}
		if bb.Opacity < 0 {
			bb.Opacity = 0
		}
		if bb.Opacity > 1 {
			bb.Opacity = 1
		}
		out.BookendBackground = &bb
	}

	return out
}
