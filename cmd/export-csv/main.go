package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"bookify/internal/shelf"
	"bookify/pkg/database"
	"bookify/pkg/models"
)

func main() {
	var (
		booksOut       = flag.String("books", "data/shelf_books.csv", "output CSV path for shelf books")
		annotationsOut = flag.String("annotations", "data/annotations.csv", "output CSV path for annotations")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportBooks(ctx, db, *booksOut); err != nil {
		log.Fatalf("export shelf books failed: %v", err)
	}
	if err := exportAnnotations(ctx, db, *annotationsOut); err != nil {
		log.Fatalf("export annotations failed: %v", err)
	}

	log.Printf("✅ exported shelf books to %s and annotations to %s", *booksOut, *annotationsOut)
}

func exportBooks(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"user_id", "shelf_id", "shelf_name", "row", "position", "book_id", "title", "author", "img"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT user_id, id, doc
        FROM shelves
        ORDER BY user_id, position
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID string
			id     int64
			doc    string
		)
		if err := rows.Scan(&userID, &id, &doc); err != nil {
			return err
		}

		var s models.Shelf
		if err := json.Unmarshal([]byte(doc), &s); err != nil {
			log.Printf("skipping corrupt shelf %d for user %s: %v", id, userID, err)
			continue
		}
		// Legacy documents carry a flat list only.
		shelf.Migrate(&s)

		for rowIdx, row := range s.Rows {
			for bookIdx, b := range row.Books {
				if err := w.Write([]string{
					userID,
					strconv.FormatInt(id, 10),
					s.Name,
					strconv.Itoa(rowIdx),
					strconv.Itoa(bookIdx),
					b.ID,
					b.Title,
					b.Author,
					b.Image,
				}); err != nil {
					return err
				}
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportAnnotations(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"user_id", "book_key", "rating", "review", "finished_at", "updated_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT user_id, book_key, rating, review, finished_at, updated_at
        FROM annotations
        ORDER BY updated_at DESC
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID     string
			bookKey    string
			rating     sql.NullInt64
			review     sql.NullString
			finishedAt sql.NullInt64
			updatedAt  sql.NullInt64
		)
		if err := rows.Scan(&userID, &bookKey, &rating, &review, &finishedAt, &updatedAt); err != nil {
			return err
		}

		ratingStr := ""
		if rating.Valid && rating.Int64 > 0 {
			ratingStr = strconv.FormatInt(rating.Int64, 10)
		}
		finished := ""
		if finishedAt.Valid {
			finished = time.Unix(finishedAt.Int64, 0).UTC().Format(time.RFC3339)
		}
		updated := ""
		if updatedAt.Valid {
			updated = time.Unix(updatedAt.Int64, 0).UTC().Format(time.RFC3339)
		}

		if err := w.Write([]string{
			userID,
			bookKey,
			ratingStr,
			review.String,
			finished,
			updated,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
