package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"bookify/internal/cache"
	"bookify/internal/catalog"
	"bookify/pkg/database"
	"bookify/pkg/models"
)

// mirrorDoc is shaped like the upstream volumes response so mirror-server
// output can feed the catalog client directly.
type mirrorDoc struct {
	Items []catalog.Volume `json:"items"`
}

func main() {
	var (
		outPath = flag.String("out", "data/mirror.json", "output JSON path")
		limit   = flag.Int("limit", 500, "how many volumes to export")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	store := cache.NewStore(db)

	keys, err := store.Keys(ctx, catalog.FeedKeyPrefix)
	if err != nil {
		log.Fatalf("list cache keys failed: %v", err)
	}
	keys = append(keys, catalog.PoolKey)

	seen := make(map[string]bool)
	var doc mirrorDoc
	for _, key := range keys {
		ttl := cache.FeedTTL
		if key == catalog.PoolKey {
			ttl = cache.PoolTTL
		}
		raw, hit, err := store.Get(ctx, key, ttl)
		if err != nil {
			log.Fatalf("read cache entry %s failed: %v", key, err)
		}
		if !hit {
			continue
		}

		var books []models.Book
		if err := json.Unmarshal(raw, &books); err != nil {
			log.Printf("skipping corrupt cache entry %s: %v", key, err)
			continue
		}

		for _, b := range books {
			if seen[b.Key()] {
				continue
			}
			seen[b.Key()] = true
			doc.Items = append(doc.Items, toVolume(b))
			if len(doc.Items) >= *limit {
				break
			}
		}
		if len(doc.Items) >= *limit {
			break
		}
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("mkdir failed: %v", err)
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatalf("marshal failed: %v", err)
	}

	if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		log.Fatalf("write failed: %v", err)
	}

	log.Printf("✅ exported %d volumes to %s", len(doc.Items), *outPath)
}

// toVolume rebuilds an upstream-shaped volume from a processed book. Rating
// fields are gone after processing, so mirror feeds sort by insertion order.
func toVolume(b models.Book) catalog.Volume {
	authors := b.Authors
	if len(authors) == 0 && b.Author != "" {
		authors = []string{b.Author}
	}
	categories := b.Categories
	if len(categories) == 0 && b.Genre != "" {
		categories = []string{b.Genre}
	}
	return catalog.Volume{
		ID: b.ID,
		VolumeInfo: catalog.VolumeInfo{
			Title:       b.Title,
			Authors:     authors,
			Categories:  categories,
			Description: b.Description,
			PageCount:   b.PageCount,
			ImageLinks:  catalog.ImageLinks{Thumbnail: b.Image},
		},
	}
}
