package shelf

import "errors"

// Capacity limits. A shelf holds at most MaxRows rows of BooksPerRow books.
const (
	BooksPerRow = 5
	MaxRows     = 10
)

var (
	ErrMissingTitle     = errors.New("book title required")
	ErrDuplicateBook    = errors.New("book already on shelf")
	ErrShelfFull        = errors.New("shelf is full")
	ErrRowLimitReached  = errors.New("row limit reached")
	ErrRowNotEmpty      = errors.New("row still has books")
	ErrLastRowProtected = errors.New("cannot delete the only row")
	ErrBadPosition      = errors.New("position out of range")
	ErrShelfNotFound    = errors.New("shelf not found")
	ErrStorageQuota     = errors.New("storage quota exceeded")
)
