package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"bookify/internal/shelf"
	"bookify/pkg/database"
	"bookify/pkg/models"
)

func main() {
	var (
		booksIn       = flag.String("books", "data/shelf_books.csv", "input CSV path for shelf books")
		annotationsIn = flag.String("annotations", "data/annotations.csv", "input CSV path for annotations")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := importBooks(ctx, db, *booksIn); err != nil {
		log.Fatalf("import shelf books failed: %v", err)
	}
	if err := importAnnotations(ctx, db, *annotationsIn); err != nil {
		log.Fatalf("import annotations failed: %v", err)
	}

	log.Printf("✅ imported shelf books from %s and annotations from %s", *booksIn, *annotationsIn)
}

// importBooks replays exported rows through the shelf rules, so capacity
// limits and duplicate checks apply the same as through the API. Shelves
// that do not exist yet are created; their ids may differ from the export.
func importBooks(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	repo := shelf.NewRepo(db)

	type shelfKey struct {
		userID  string
		shelfID string
	}
	loaded := make(map[shelfKey]*models.Shelf)

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		userID := valueAt(header, row, "user_id")
		shelfID := valueAt(header, row, "shelf_id")
		title := valueAt(header, row, "title")
		if userID == "" || shelfID == "" || title == "" {
			continue
		}

		key := shelfKey{userID, shelfID}
		s, ok := loaded[key]
		if !ok {
			s, err = loadOrCreateShelf(ctx, repo, userID, shelfID, valueAt(header, row, "shelf_name"))
			if err != nil {
				return err
			}
			loaded[key] = s
		}

		book := models.Book{
			ID:     valueAt(header, row, "book_id"),
			Title:  title,
			Author: valueAt(header, row, "author"),
			Image:  valueAt(header, row, "img"),
		}
		if err := shelf.AddBook(s, book); err != nil {
			if errors.Is(err, shelf.ErrDuplicateBook) {
				continue
			}
			if errors.Is(err, shelf.ErrShelfFull) {
				log.Printf("shelf %d for user %s is full, skipping %q", s.ID, userID, title)
				continue
			}
			return fmt.Errorf("add %q to shelf %s for %s: %w", title, shelfID, userID, err)
		}
	}

	for key, s := range loaded {
		if err := repo.Save(ctx, key.userID, s); err != nil {
			return fmt.Errorf("save shelf %d for %s: %w", s.ID, key.userID, err)
		}
	}

	return nil
}

func loadOrCreateShelf(ctx context.Context, repo *shelf.Repo, userID, shelfID, name string) (*models.Shelf, error) {
	id, err := strconv.ParseInt(shelfID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad shelf_id %q: %w", shelfID, err)
	}

	s, err := repo.Get(ctx, userID, id)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, shelf.ErrShelfNotFound) {
		return nil, err
	}
	return repo.Create(ctx, userID, name)
}

// importAnnotations writes rows directly, keeping the exported timestamps
// instead of stamping the import time.
func importAnnotations(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO annotations (user_id, book_key, rating, review, finished_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, book_key) DO UPDATE SET
			rating = excluded.rating,
			review = excluded.review,
			finished_at = excluded.finished_at,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		userID := valueAt(header, row, "user_id")
		bookKey := valueAt(header, row, "book_key")
		if userID == "" || bookKey == "" {
			continue
		}

		rating, err := parseNullInt(valueAt(header, row, "rating"))
		if err != nil {
			return fmt.Errorf("parse rating for %s/%s: %w", userID, bookKey, err)
		}

		finishedAt, err := parseUnix(valueAt(header, row, "finished_at"))
		if err != nil {
			return fmt.Errorf("parse finished_at for %s/%s: %w", userID, bookKey, err)
		}

		updatedAt, err := parseUnix(valueAt(header, row, "updated_at"))
		if err != nil {
			return fmt.Errorf("parse updated_at for %s/%s: %w", userID, bookKey, err)
		}
		if !updatedAt.Valid {
			updatedAt = sql.NullInt64{Int64: time.Now().Unix(), Valid: true}
		}

		if _, err := stmt.ExecContext(
			ctx,
			userID,
			bookKey,
			rating.Int64,
			valueAt(header, row, "review"),
			finishedAt,
			updatedAt.Int64,
		); err != nil {
			return err
		}
	}

	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNullInt(raw string) (sql.NullInt64, error) {
	if raw == "" {
		return sql.NullInt64{}, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}

func parseUnix(raw string) (sql.NullInt64, error) {
	if raw == "" {
		return sql.NullInt64{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}, nil
}
