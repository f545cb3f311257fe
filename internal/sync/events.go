package sync

import "time"

// ShelfEvent is the line-JSON record pushed to connected sync clients
// whenever a shelf mutates. Type is one of:
//
//	shelf.created, shelf.book_added, shelf.book_removed,
//	shelf.rows_changed, shelf.settings, shelf.switched
type ShelfEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	ShelfID   int64     `json:"shelf_id"`
	ShelfName string    `json:"shelf_name,omitempty"`
	BookTitle string    `json:"book_title,omitempty"`
	Rows      int       `json:"rows,omitempty"`
	Books     int       `json:"books,omitempty"`
	At        time.Time `json:"at"`
}
