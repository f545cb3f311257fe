package shelf

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"bookify/pkg/models"
)

// DefaultShelfName is used when the first book arrives and no shelf exists.
const DefaultShelfName = "Custom Shelf #1"

// MaxDocBytes caps a serialized shelf document. Embedded base64 backgrounds
// can blow a document up; writes past the cap fail with ErrStorageQuota
// before anything is written.
const MaxDocBytes = 2 << 20

// app_state keys.
const (
	stateCurrentShelf = "current_shelf_id"
	stateLegacyMirror = "my_shelf"
)

// Repo persists shelves as one JSON document per shelf. The document, the
// current-shelf pointer and the legacy flat mirror are always written in a
// single transaction, so a crash cannot leave them torn.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// List returns the user's shelves in display order, migrated to row form.
func (r *Repo) List(ctx context.Context, userID string) ([]models.Shelf, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT doc FROM shelves
		WHERE user_id = ?
		ORDER BY position ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list shelves: %w", err)
	}
	defer rows.Close()

	out := make([]models.Shelf, 0, 4)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan shelf doc: %w", err)
		}
		var s models.Shelf
		if err := json.Unmarshal([]byte(doc), &s); err != nil {
			return nil, fmt.Errorf("decode shelf doc: %w", err)
		}
		Migrate(&s)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Get returns one shelf, or ErrShelfNotFound.
func (r *Repo) Get(ctx context.Context, userID string, id int64) (*models.Shelf, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT doc FROM shelves
		WHERE user_id = ? AND id = ?
	`, userID, id)

	var doc string
	if err := row.Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrShelfNotFound
		}
		return nil, fmt.Errorf("get shelf: %w", err)
	}

	var s models.Shelf
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		return nil, fmt.Errorf("decode shelf doc: %w", err)
	}
	Migrate(&s)
	return &s, nil
}

// Create adds a new named shelf with one empty row and default settings.
// The first shelf a user creates becomes the current shelf.
func (r *Repo) Create(ctx context.Context, userID, name string) (*models.Shelf, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create shelf: %w", err)
	}
	defer tx.Rollback()

	var nextID, nextPos int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(id), 0) + 1, COALESCE(MAX(position), 0) + 1
		FROM shelves WHERE user_id = ?
	`, userID).Scan(&nextID, &nextPos); err != nil {
		return nil, fmt.Errorf("next shelf id: %w", err)
	}

	s := models.Shelf{
		ID:       nextID,
		Name:     name,
		Rows:     []models.Row{{ID: 1, Books: []models.Book{}}},
		Books:    []models.Book{},
		Settings: DefaultSettings(),
	}

	doc, err := encodeDoc(&s)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO shelves (user_id, id, doc, position)
		VALUES (?, ?, ?, ?)
	`, userID, s.ID, doc, nextPos); err != nil {
		return nil, fmt.Errorf("insert shelf: %w", err)
	}

	if nextID == 1 {
		if err := setState(ctx, tx, userID, stateCurrentShelf, "1"); err != nil {
			return nil, err
		}
		if err := writeMirror(ctx, tx, userID, &s); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create shelf: %w", err)
	}
	return &s, nil
}

// Save writes a mutated shelf back. When the shelf is the current one, the
// legacy flat mirror is refreshed in the same transaction.
func (r *Repo) Save(ctx context.Context, userID string, s *models.Shelf) error {
	doc, err := encodeDoc(s)
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save shelf: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE shelves SET doc = ?
		WHERE user_id = ? AND id = ?
	`, doc, userID, s.ID)
	if err != nil {
		return fmt.Errorf("update shelf: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShelfNotFound
	}

	current, err := currentID(ctx, tx, userID)
	if err != nil {
		return err
	}
	if current == s.ID {
		if err := writeMirror(ctx, tx, userID, s); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save shelf: %w", err)
	}
	return nil
}

// CurrentID returns the active shelf id, or 0 when the user has none.
func (r *Repo) CurrentID(ctx context.Context, userID string) (int64, error) {
	return currentID(ctx, r.DB, userID)
}

// SetCurrent switches the active shelf: a pointer reassignment plus a mirror
// refresh, not a data copy.
func (r *Repo) SetCurrent(ctx context.Context, userID string, id int64) error {
	s, err := r.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set current: %w", err)
	}
	defer tx.Rollback()

	if err := setState(ctx, tx, userID, stateCurrentShelf, fmt.Sprintf("%d", id)); err != nil {
		return err
	}
	if err := writeMirror(ctx, tx, userID, s); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set current: %w", err)
	}
	return nil
}

// Mirror returns the legacy flat book list of the current shelf. Users with
// no shelves get an empty list.
func (r *Repo) Mirror(ctx context.Context, userID string) ([]models.Book, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT value FROM app_state
		WHERE user_id = ? AND key = ?
	`, userID, stateLegacyMirror)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return []models.Book{}, nil
		}
		return nil, fmt.Errorf("get mirror: %w", err)
	}

	var books []models.Book
	if err := json.Unmarshal([]byte(raw), &books); err != nil {
		return nil, fmt.Errorf("decode mirror: %w", err)
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func currentID(ctx context.Context, q execer, userID string) (int64, error) {
	row := q.QueryRowContext(ctx, `
		SELECT value FROM app_state
		WHERE user_id = ? AND key = ?
	`, userID, stateCurrentShelf)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("get current shelf: %w", err)
	}

	var id int64
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
		return 0, fmt.Errorf("parse current shelf id %q: %w", raw, err)
	}
	return id, nil
}

func setState(ctx context.Context, q execer, userID, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO app_state (user_id, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value
	`, userID, key, value)
	if err != nil {
		return fmt.Errorf("set state %s: %w", key, err)
	}
	return nil
}

func writeMirror(ctx context.Context, q execer, userID string, s *models.Shelf) error {
	flat, err := json.Marshal(Flatten(s))
	if err != nil {
		return fmt.Errorf("encode mirror: %w", err)
	}
	return setState(ctx, q, userID, stateLegacyMirror, string(flat))
}

func encodeDoc(s *models.Shelf) (string, error) {
	syncBooks(s)
	doc, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode shelf doc: %w", err)
	}
	if len(doc) > MaxDocBytes {
		return "", ErrStorageQuota
	}
	return string(doc), nil
}
