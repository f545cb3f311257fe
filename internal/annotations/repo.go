// Package annotations stores per-user reading metadata: a rating, a review,
// a finished date and free-form page notes, keyed by book. The key is the
// provider volume id when the book has one, otherwise its normalized title,
// so annotations survive a book being removed from and re-added to a shelf.
package annotations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookify/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Upsert writes the annotation for (user, book), replacing any previous one.
func (r *Repo) Upsert(ctx context.Context, a models.Annotation) error {
	a.UpdatedAt = time.Now().UTC()

	var finished *int64
	if a.FinishedAt != nil {
		u := a.FinishedAt.Unix()
		finished = &u
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO annotations (user_id, book_key, rating, review, finished_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, book_key) DO UPDATE SET
			rating = excluded.rating,
			review = excluded.review,
			finished_at = excluded.finished_at,
			updated_at = excluded.updated_at
	`, a.UserID, a.BookKey, a.Rating, a.Review, finished, a.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert annotation: %w", err)
	}
	return nil
}

// Get returns the annotation for (user, book), or nil when none exists.
func (r *Repo) Get(ctx context.Context, userID, bookKey string) (*models.Annotation, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT rating, review, finished_at, updated_at
		FROM annotations
		WHERE user_id = ? AND book_key = ?
	`, userID, bookKey)

	a := models.Annotation{UserID: userID, BookKey: bookKey}
	var finished sql.NullInt64
	var updated int64
	if err := row.Scan(&a.Rating, &a.Review, &finished, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get annotation: %w", err)
	}

	if finished.Valid {
		t := time.Unix(finished.Int64, 0).UTC()
		a.FinishedAt = &t
	}
	a.UpdatedAt = time.Unix(updated, 0).UTC()
	return &a, nil
}

// List returns all of a user's annotations, most recently updated first.
func (r *Repo) List(ctx context.Context, userID string) ([]models.Annotation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT book_key, rating, review, finished_at, updated_at
		FROM annotations
		WHERE user_id = ?
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer rows.Close()

	var out []models.Annotation
	for rows.Next() {
		a := models.Annotation{UserID: userID}
		var finished sql.NullInt64
		var updated int64
		if err := rows.Scan(&a.BookKey, &a.Rating, &a.Review, &finished, &updated); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		if finished.Valid {
			t := time.Unix(finished.Int64, 0).UTC()
			a.FinishedAt = &t
		}
		a.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes the annotation; false when there was none.
func (r *Repo) Delete(ctx context.Context, userID, bookKey string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM annotations WHERE user_id = ? AND book_key = ?
	`, userID, bookKey)
	if err != nil {
		return false, fmt.Errorf("delete annotation: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// AddNote appends a page note for (user, book) and returns it with its id.
func (r *Repo) AddNote(ctx context.Context, userID, bookKey string, page int, text string) (*models.Note, error) {
	note := &models.Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		BookKey:   bookKey,
		Page:      page,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, book_key, page, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, note.ID, note.UserID, note.BookKey, note.Page, note.Text, note.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}
	return note, nil
}

// ListNotes pages through a book's notes in reading order (page, then age).
func (r *Repo) ListNotes(ctx context.Context, userID, bookKey string, limit, offset int) ([]models.Note, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notes WHERE user_id = ? AND book_key = ?
	`, userID, bookKey).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, page, text, created_at
		FROM notes
		WHERE user_id = ? AND book_key = ?
		ORDER BY page ASC, created_at ASC
		LIMIT ? OFFSET ?
	`, userID, bookKey, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := make([]models.Note, 0, limit)
	for rows.Next() {
		n := models.Note{UserID: userID, BookKey: bookKey}
		var created int64
		if err := rows.Scan(&n.ID, &n.Page, &n.Text, &created); err != nil {
			return nil, 0, fmt.Errorf("scan note: %w", err)
		}
		n.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// DeleteNote removes one note by id; false when it does not exist or
// belongs to someone else.
func (r *Repo) DeleteNote(ctx context.Context, userID, noteID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM notes WHERE user_id = ? AND id = ?
	`, userID, noteID)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
