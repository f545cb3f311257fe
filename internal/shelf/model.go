// Package shelf implements the row-structured shelf model: migration of
// legacy flat shelves, capacity-checked book placement and removal, row
// lifecycle, settings resolution and persistence.
package shelf

import (
	"bookify/pkg/models"
)

// Migrate converts a legacy shelf (flat books array, no rows) into row form:
// consecutive chunks of at most BooksPerRow books, rows numbered from 1. An
// empty shelf gets exactly one empty row; a shelf is never row-less. Shelves
// that already have rows are returned unchanged, so calling Migrate twice is
// a no-op.
func Migrate(s *models.Shelf) *models.Shelf {
	if s.Rows != nil {
		return s
	}

	books := s.Books
	for i := 0; i < len(books); i += BooksPerRow {
		end := i + BooksPerRow
		if end > len(books) {
			end = len(books)
		}
		s.Rows = append(s.Rows, models.Row{
			ID:    len(s.Rows) + 1,
			Books: append([]models.Book{}, books[i:end]...),
		})
	}

	if len(s.Rows) == 0 {
		s.Rows = []models.Row{{ID: 1, Books: []models.Book{}}}
	}

	syncBooks(s)
	return s
}

// AddBook places book on the first row with free space, appending a new row
// when every existing row is full. The normalized title must not already
// appear anywhere on the shelf. On error the shelf is untouched.
func AddBook(s *models.Shelf, book models.Book) error {
	Migrate(s)

	key := book.NormalizedTitle()
	if key == "" {
		return ErrMissingTitle
	}

	for _, r := range s.Rows {
		for _, b := range r.Books {
			if b.NormalizedTitle() == key {
				return ErrDuplicateBook
			}
		}
	}

	target := -1
	for i := range s.Rows {
		if len(s.Rows[i].Books) < BooksPerRow {
			target = i
			break
		}
	}

	if target == -1 {
		if len(s.Rows) >= MaxRows {
			return ErrShelfFull
		}
		s.Rows = append(s.Rows, models.Row{ID: nextRowID(s.Rows), Books: []models.Book{}})
		target = len(s.Rows) - 1
	}

	s.Rows[target].Books = append(s.Rows[target].Books, book)
	syncBooks(s)
	return nil
}

// RemoveBook deletes the book at (rowIndex, bookIndex). A row left empty is
// removed outright unless it is the shelf's only row; remaining rows keep
// their order and ids.
func RemoveBook(s *models.Shelf, rowIndex, bookIndex int) error {
	Migrate(s)

	if rowIndex < 0 || rowIndex >= len(s.Rows) {
		return ErrBadPosition
	}
	row := &s.Rows[rowIndex]
	if bookIndex < 0 || bookIndex >= len(row.Books) {
		return ErrBadPosition
	}

	row.Books = append(row.Books[:bookIndex], row.Books[bookIndex+1:]...)

	if len(row.Books) == 0 && len(s.Rows) > 1 {
		s.Rows = append(s.Rows[:rowIndex], s.Rows[rowIndex+1:]...)
	}

	syncBooks(s)
	return nil
}

// AddRow appends an empty row, failing once the shelf has MaxRows rows.
func AddRow(s *models.Shelf) error {
	Migrate(s)

	if len(s.Rows) >= MaxRows {
		return ErrRowLimitReached
	}
	s.Rows = append(s.Rows, models.Row{ID: nextRowID(s.Rows), Books: []models.Book{}})
	return nil
}

// DeleteRow removes the row at rowIndex. The row must be empty and must not
// be the shelf's only row.
func DeleteRow(s *models.Shelf, rowIndex int) error {
	Migrate(s)

	if rowIndex < 0 || rowIndex >= len(s.Rows) {
		return ErrBadPosition
	}
	if len(s.Rows[rowIndex].Books) > 0 {
		return ErrRowNotEmpty
	}
	if len(s.Rows) == 1 {
		return ErrLastRowProtected
	}

	s.Rows = append(s.Rows[:rowIndex], s.Rows[rowIndex+1:]...)
	syncBooks(s)
	return nil
}

// Flatten returns all books in row-major order.
func Flatten(s *models.Shelf) []models.Book {
	out := make([]models.Book, 0, s.TotalBooks())
	for _, r := range s.Rows {
		out = append(out, r.Books...)
	}
	return out
}

// syncBooks recomputes the derived flat Books field from Rows. Every mutator
// calls it, so persisted shelves always satisfy books == flatten(rows).
func syncBooks(s *models.Shelf) {
	s.Books = Flatten(s)
}

// nextRowID is max existing row id + 1, or 1 on an empty shelf. Row ids are
// assigned positionally at migration time and never reused within a shelf's
// lifetime except after a full collapse.
func nextRowID(rows []models.Row) int {
	next := 1
	for _, r := range rows {
		if r.ID >= next {
			next = r.ID + 1
		}
	}
	return next
}
