package models

import "encoding/json"

// Background types.
const (
	BackgroundColor    = "color"
	BackgroundImage    = "image"
	BackgroundGradient = "gradient"
)

// Decoration kinds and positions.
const (
	DecorationIcon  = "icon"
	DecorationImage = "image"
	DecorationText  = "text"
	DecorationShape = "shape"

	PositionLeft  = "left"
	PositionRight = "right"
)

// Gradient is the payload for a gradient background: 2 or 3 color stops.
type Gradient struct {
	Type      string   `json:"type"`
	Direction string   `json:"direction,omitempty"`
	Colors    []string `json:"colors"`
}

// Decoration is a bookend ornament at either end of a shelf. Legacy settings
// stored decorations as bare icon-name strings; the decoder accepts both
// forms, leaving Position empty for the resolver to infer from array index.
type Decoration struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Position string `json:"position,omitempty"`
}

func (d *Decoration) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*d = Decoration{Type: DecorationIcon, Value: name}
		return nil
	}
	type plain Decoration
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Decoration(p)
	return nil
}

// BookendBackground is the backing panel behind bookend decorations.
type BookendBackground struct {
	Show    bool    `json:"show"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// ShelfSettings is a shelf's display configuration. Persisted settings may be
// partial or legacy-shaped; shelf.ResolveSettings merges them with defaults.
// Field names match the original document format.
type ShelfSettings struct {
	Background         string             `json:"background,omitempty"`
	BackgroundType     string             `json:"backgroundType,omitempty"`
	BackgroundImage    string             `json:"backgroundImage,omitempty"`
	BackgroundGradient *Gradient          `json:"backgroundGradient,omitempty"`
	Texture            string             `json:"texture,omitempty"`
	Color              string             `json:"color,omitempty"`
	Decorations        []Decoration       `json:"decorations"`
	BookendBackground  *BookendBackground `json:"bookendBackground,omitempty"`
}
