package models

import "time"

// Annotation is a user's reading record for one book: rating (1-5, 0 when
// unset), free-text review and the date the book was finished.
type Annotation struct {
	UserID     string     `json:"user_id"`
	BookKey    string     `json:"book_key"`
	Rating     int        `json:"rating,omitempty"`
	Review     string     `json:"review,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Note is a page-anchored annotation on a book.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookKey   string    `json:"book_key"`
	Page      int       `json:"page"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
