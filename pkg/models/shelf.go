package models

// Row is a fixed-capacity sub-list within a shelf: at most 5 books.
// Its id is a sequence number unique within the owning shelf only.
type Row struct {
	ID    int    `json:"id"`
	Books []Book `json:"books"`
}

// Shelf is a user-named collection of books organized into 1..10 rows.
//
// Rows is the single source of truth for the layout. Books is a derived
// flattening of all rows in row-major order, kept in the document for older
// consumers; every mutating operation in internal/shelf recomputes it, so the
// two cannot drift in a persisted shelf. A shelf loaded from a legacy
// document may have Books populated and Rows nil until it passes through
// shelf.Migrate.
type Shelf struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Rows     []Row         `json:"rows,omitempty"`
	Books    []Book        `json:"books"`
	Settings ShelfSettings `json:"settings"`
}

// TotalBooks counts books across all rows.
func (s Shelf) TotalBooks() int {
	n := 0
	for _, r := range s.Rows {
		n += len(r.Books)
	}
	return n
}
