package shelf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/pkg/models"
)

func book(title string) models.Book {
	return models.Book{Title: title, Author: "Author"}
}

func books(n int) []models.Book {
	out := make([]models.Book, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, book(fmt.Sprintf("Book %02d", i)))
	}
	return out
}

func filledShelf(t *testing.T, n int) *models.Shelf {
	t.Helper()
	s := &models.Shelf{Name: "test"}
	Migrate(s)
	for _, b := range books(n) {
		require.NoError(t, AddBook(s, b))
	}
	return s
}

func requireConsistent(t *testing.T, s *models.Shelf) {
	t.Helper()
	assert.Equal(t, Flatten(s), s.Books, "books must equal row-major flatten of rows")
	require.NotEmpty(t, s.Rows, "a shelf is never row-less")
	require.LessOrEqual(t, len(s.Rows), MaxRows)
	for _, r := range s.Rows {
		require.LessOrEqual(t, len(r.Books), BooksPerRow)
	}
}

func TestMigrateChunksLegacyBooks(t *testing.T) {
	s := &models.Shelf{Name: "legacy", Books: books(12)}

	Migrate(s)

	require.Len(t, s.Rows, 3)
	assert.Equal(t, []int{5, 5, 2}, []int{
		len(s.Rows[0].Books), len(s.Rows[1].Books), len(s.Rows[2].Books),
	})
	assert.Equal(t, 1, s.Rows[0].ID)
	assert.Equal(t, 2, s.Rows[1].ID)
	assert.Equal(t, 3, s.Rows[2].ID)
	assert.Equal(t, "Book 00", s.Rows[0].Books[0].Title)
	assert.Equal(t, "Book 11", s.Rows[2].Books[1].Title)
	requireConsistent(t, s)
}

func TestMigrateEmptyShelfGetsOneEmptyRow(t *testing.T) {
	s := &models.Shelf{Name: "empty"}

	Migrate(s)

	require.Len(t, s.Rows, 1)
	assert.Equal(t, 1, s.Rows[0].ID)
	assert.Empty(t, s.Rows[0].Books)
	requireConsistent(t, s)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := &models.Shelf{Name: "legacy", Books: books(7)}

	Migrate(s)
	first := Flatten(s)
	rowCount := len(s.Rows)

	Migrate(s)

	assert.Equal(t, rowCount, len(s.Rows))
	assert.Equal(t, first, Flatten(s))
}

func TestMigratePreservesRowStructure(t *testing.T) {
	// A shelf already in row form keeps its exact layout, even when rows
	// are partially filled in the middle.
	s := &models.Shelf{
		Name: "rows",
		Rows: []models.Row{
			{ID: 1, Books: books(2)},
			{ID: 2, Books: []models.Book{book("Solo")}},
		},
	}

	Migrate(s)

	require.Len(t, s.Rows, 2)
	assert.Len(t, s.Rows[0].Books, 2)
	assert.Len(t, s.Rows[1].Books, 1)
	requireConsistent(t, s)
}

func TestAddBookFillsFirstFreeRow(t *testing.T) {
	s := &models.Shelf{
		Name: "gaps",
		Rows: []models.Row{
			{ID: 1, Books: books(5)},
			{ID: 2, Books: []models.Book{book("Alone")}},
			{ID: 3, Books: []models.Book{}},
		},
	}

	require.NoError(t, AddBook(s, book("Newcomer")))

	assert.Len(t, s.Rows[1].Books, 2, "book should land on the first row with space")
	assert.Equal(t, "Newcomer", s.Rows[1].Books[1].Title)
	requireConsistent(t, s)
}

func TestAddBookAppendsRowWhenAllFull(t *testing.T) {
	s := filledShelf(t, 5)
	require.Len(t, s.Rows, 1)

	require.NoError(t, AddBook(s, book("Sixth")))

	require.Len(t, s.Rows, 2)
	assert.Equal(t, 2, s.Rows[1].ID)
	assert.Equal(t, "Sixth", s.Rows[1].Books[0].Title)
	requireConsistent(t, s)
}

func TestAddBookRejectsDuplicateTitle(t *testing.T) {
	s := filledShelf(t, 3)

	err := AddBook(s, models.Book{Title: "  BOOK 01  "})

	require.ErrorIs(t, err, ErrDuplicateBook)
	assert.Equal(t, 3, s.TotalBooks(), "failed add must not change the shelf")
	requireConsistent(t, s)
}

func TestAddBookRejectsEmptyTitle(t *testing.T) {
	s := filledShelf(t, 1)

	require.ErrorIs(t, AddBook(s, models.Book{Title: "   "}), ErrMissingTitle)
	assert.Equal(t, 1, s.TotalBooks())
}

func TestAddBookShelfFullAtCapacity(t *testing.T) {
	s := filledShelf(t, BooksPerRow*MaxRows)
	require.Len(t, s.Rows, MaxRows)

	err := AddBook(s, book("One Too Many"))

	require.ErrorIs(t, err, ErrShelfFull)
	assert.Equal(t, BooksPerRow*MaxRows, s.TotalBooks())
	requireConsistent(t, s)
}

func TestAddBookMigratesLegacyShelfFirst(t *testing.T) {
	s := &models.Shelf{Name: "legacy", Books: books(6)}

	require.NoError(t, AddBook(s, book("Seventh")))

	require.Len(t, s.Rows, 2)
	assert.Equal(t, "Seventh", s.Rows[1].Books[1].Title)
	requireConsistent(t, s)
}

func TestRemoveBookSplices(t *testing.T) {
	s := filledShelf(t, 7)

	require.NoError(t, RemoveBook(s, 0, 2))

	assert.Equal(t, 6, s.TotalBooks())
	assert.Equal(t, "Book 03", s.Rows[0].Books[2].Title, "later books shift left")
	assert.Len(t, s.Rows[0].Books, 4, "books do not reflow between rows")
	assert.Len(t, s.Rows[1].Books, 2)
	requireConsistent(t, s)
}

func TestRemoveBookCollapsesEmptiedRow(t *testing.T) {
	s := &models.Shelf{
		Name: "collapse",
		Rows: []models.Row{
			{ID: 1, Books: books(5)},
			{ID: 2, Books: []models.Book{book("Lonely")}},
			{ID: 3, Books: []models.Book{book("Tail")}},
		},
	}

	require.NoError(t, RemoveBook(s, 1, 0))

	require.Len(t, s.Rows, 2)
	assert.Equal(t, 3, s.Rows[1].ID, "surviving rows keep their ids")
	assert.Equal(t, "Tail", s.Rows[1].Books[0].Title)
	requireConsistent(t, s)
}

func TestRemoveBookKeepsSoleEmptyRow(t *testing.T) {
	s := filledShelf(t, 1)

	require.NoError(t, RemoveBook(s, 0, 0))

	require.Len(t, s.Rows, 1)
	assert.Empty(t, s.Rows[0].Books)
	requireConsistent(t, s)
}

func TestRemoveBookBadPosition(t *testing.T) {
	s := filledShelf(t, 3)

	require.ErrorIs(t, RemoveBook(s, 1, 0), ErrBadPosition)
	require.ErrorIs(t, RemoveBook(s, 0, 3), ErrBadPosition)
	require.ErrorIs(t, RemoveBook(s, -1, 0), ErrBadPosition)
	assert.Equal(t, 3, s.TotalBooks())
}

func TestAddRowUpToLimit(t *testing.T) {
	s := &models.Shelf{Name: "rows"}
	Migrate(s)

	for i := 1; i < MaxRows; i++ {
		require.NoError(t, AddRow(s))
	}
	require.Len(t, s.Rows, MaxRows)

	require.ErrorIs(t, AddRow(s), ErrRowLimitReached)
	assert.Len(t, s.Rows, MaxRows)
}

func TestAddRowAssignsFreshID(t *testing.T) {
	s := &models.Shelf{
		Name: "ids",
		Rows: []models.Row{
			{ID: 1, Books: []models.Book{book("A")}},
			{ID: 4, Books: []models.Book{book("B")}},
		},
	}

	require.NoError(t, AddRow(s))

	assert.Equal(t, 5, s.Rows[2].ID, "new id must not collide with survivors")
}

func TestDeleteRowRules(t *testing.T) {
	s := &models.Shelf{
		Name: "del",
		Rows: []models.Row{
			{ID: 1, Books: []models.Book{book("Keep")}},
			{ID: 2, Books: []models.Book{}},
		},
	}

	require.ErrorIs(t, DeleteRow(s, 0), ErrRowNotEmpty)
	require.ErrorIs(t, DeleteRow(s, 5), ErrBadPosition)

	require.NoError(t, DeleteRow(s, 1))
	require.Len(t, s.Rows, 1)

	// The sole remaining row is empty after removing its book, but it may
	// still not be deleted.
	require.NoError(t, RemoveBook(s, 0, 0))
	require.ErrorIs(t, DeleteRow(s, 0), ErrLastRowProtected)
	requireConsistent(t, s)
}

func TestDeleteRowNonEmptyBeatsLastRow(t *testing.T) {
	// A shelf with a single non-empty row reports "not empty", not "last
	// row": the user should empty the row first, not be told it is special.
	s := filledShelf(t, 2)
	require.Len(t, s.Rows, 1)

	require.ErrorIs(t, DeleteRow(s, 0), ErrRowNotEmpty)
}

func TestFullLifecycle(t *testing.T) {
	// Legacy shelf with 12 books, then a day of edits.
	s := &models.Shelf{Name: "life", Books: books(12)}

	require.NoError(t, AddBook(s, book("Thirteenth")))
	require.Len(t, s.Rows, 3, "row 3 had space, no new row yet")

	// Empty row 3 one book at a time; it collapses on the last removal.
	require.NoError(t, RemoveBook(s, 2, 2))
	require.NoError(t, RemoveBook(s, 2, 1))
	require.NoError(t, RemoveBook(s, 2, 0))
	require.Len(t, s.Rows, 2)

	require.NoError(t, AddRow(s))
	require.NoError(t, AddBook(s, book("On The New Row")))
	assert.Equal(t, "On The New Row", s.Rows[2].Books[0].Title)

	assert.Equal(t, 11, s.TotalBooks())
	requireConsistent(t, s)
}
