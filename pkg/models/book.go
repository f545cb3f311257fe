package models

import (
	"encoding/json"
	"strings"
)

// Book is the denormalized snapshot stored on a shelf. It is produced once at
// the catalog provider boundary; older persisted payloads used inconsistent
// field names (image vs img, bare authors array), so the decoder resolves
// those aliases into the canonical fields.
type Book struct {
	ID          string   `json:"id,omitempty"` // provider-assigned volume id
	Title       string   `json:"title"`
	Image       string   `json:"img,omitempty"`
	Author      string   `json:"author,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Genre       string   `json:"genre,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Description string   `json:"description,omitempty"`
	PageCount   int      `json:"page_count,omitempty"`
}

func (b *Book) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           string   `json:"id"`
		Title        string   `json:"title"`
		Img          string   `json:"img"`
		Image        string   `json:"image"`
		Author       string   `json:"author"`
		Authors      []string `json:"authors"`
		Genre        string   `json:"genre"`
		Categories   []string `json:"categories"`
		Description  string   `json:"description"`
		PageCount    int      `json:"page_count"`
		PageCountAlt int      `json:"pageCount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.ID = raw.ID
	b.Title = raw.Title
	b.Description = raw.Description
	b.Authors = raw.Authors
	b.Categories = raw.Categories

	b.Image = raw.Img
	if b.Image == "" {
		b.Image = raw.Image
	}

	b.Author = raw.Author
	if b.Author == "" && len(raw.Authors) > 0 {
		b.Author = raw.Authors[0]
	}

	b.Genre = raw.Genre
	if b.Genre == "" && len(raw.Categories) > 0 {
		b.Genre = raw.Categories[0]
	}

	b.PageCount = raw.PageCount
	if b.PageCount == 0 {
		b.PageCount = raw.PageCountAlt
	}
	return nil
}

// NormalizedTitle is the de-duplication key within a shelf: trimmed and
// lowercased.
func (b Book) NormalizedTitle() string {
	return strings.ToLower(strings.TrimSpace(b.Title))
}

// Key identifies a book for per-user annotations: the provider id when
// present, otherwise the normalized title.
func (b Book) Key() string {
	if b.ID != "" {
		return b.ID
	}
	return b.NormalizedTitle()
}
