package main

import (
	"context"
	"log"
	"time"

	"bookify/internal/cache"
	"bookify/internal/catalog"
	"bookify/pkg/database"
	"bookify/pkg/utils"
)

func main() {
	utils.LoadDotEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	// Ensure schema exists
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	// Point BOOKIFY_BOOKS_API_BASE at a local mirror-server for offline runs.
	svc := catalog.NewService(catalog.NewClient(utils.BooksAPIBase()), cache.NewStore(db), nil)

	if err := svc.Warm(ctx); err != nil {
		log.Fatalf("warm failed: %v", err)
	}

	log.Println("✅ catalog feeds and micro-genre pool cached")
}
