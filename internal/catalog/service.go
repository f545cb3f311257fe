package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"bookify/internal/cache"
	"bookify/pkg/models"
)

// CategoryQueries drive the home-page feeds. Each category pulls several
// queries and merges the results; author names deliberately anchor each feed
// to recognizable books.
var CategoryQueries = map[string][]string{
	"suggested": {
		"bestseller fiction 2024",
		"Colleen Hoover",
		"Rebecca Yarros",
		"popular novel 2023",
	},
	"fantasy": {
		"Patrick Rothfuss",
		"Rebecca Yarros Fourth Wing",
		"Brandon Sanderson",
		"epic fantasy bestseller",
	},
	"romance": {
		"Colleen Hoover",
		"Emily Henry",
		"Ali Hazelwood",
		"contemporary romance bestseller",
	},
	"mystery": {
		"Freida McFadden",
		"Ruth Ware",
		"Riley Sager",
		"psychological thriller bestseller",
	},
	"scifi": {
		"Pierce Brown",
		"Suzanne Collins",
		"Andy Weir",
		"dystopian bestseller",
	},
	"horror": {
		"Stephen King",
		"Grady Hendrix",
		"Riley Sager horror",
		"dark thriller bestseller",
	},
	"nonfiction": {
		"James Clear",
		"Michelle Obama",
		"Malcolm Gladwell",
		"self help bestseller",
	},
}

// RefreshQueries feed the rotating hero banner per genre.
var RefreshQueries = map[string][]string{
	"suggested": {
		"bestseller fiction 2024",
		"popular novel 2023",
		"award winning fiction",
		"trending books",
	},
	"fantasy": {
		"epic fantasy bestseller",
		"fantasy adventure",
		"magical fantasy",
		"young adult fantasy",
	},
	"horror": {
		"horror bestseller",
		"supernatural horror",
		"psychological horror",
		"gothic horror",
	},
	"romance": {
		"contemporary romance bestseller",
		"romantic fiction",
		"romance novel",
		"love story",
	},
	"mystery": {
		"mystery thriller bestseller",
		"detective novel",
		"crime fiction",
		"psychological thriller",
	},
	"scifi": {
		"science fiction bestseller",
		"sci-fi adventure",
		"dystopian fiction",
		"space opera",
	},
	"nonfiction": {
		"nonfiction bestseller",
		"memoir",
		"biography",
		"self help",
	},
}

// MicroGenreQueries seed the wide pool of books the micro-genre generator
// mines for patterns.
var MicroGenreQueries = []string{
	"bestseller fiction 2023", "bestseller fiction 2024", "award winning fiction",
	"literary fiction", "contemporary fiction", "historical fiction",
	"contemporary romance", "historical romance", "paranormal romance",
	"romantic comedy", "second chance romance", "enemies to lovers romance",
	"epic fantasy", "urban fantasy", "young adult fantasy", "dark fantasy",
	"magical realism", "fairy tale retellings",
	"psychological thriller", "domestic thriller", "legal thriller",
	"spy thriller", "crime fiction", "detective novels",
	"supernatural horror", "psychological horror", "gothic horror",
	"paranormal fiction", "ghost stories",
	"space opera", "dystopian fiction", "cyberpunk", "time travel",
	"alternate history", "scientific fiction",
	"memoir", "biography", "self help", "business books",
	"history books", "science books", "philosophy books",
	"Taylor Jenkins Reid", "Sally Rooney", "Madeline Miller", "Celeste Ng",
	"Zadie Smith", "Donna Tartt", "Kazuo Ishiguro", "Maggie O'Farrell",
	"Tana French", "Gillian Flynn", "Paula Hawkins", "Liane Moriarty",
}

// Cache keys are shared with the export-mirror tool.
const (
	FeedKeyPrefix = "feed:"
	PoolKey       = "pool:microgenre"

	categoryFetchSize = 15
	searchFetchSize   = 20
	poolFetchSize     = 10
	poolQueryCount    = 50
	poolBatchSize     = 5
)

// Notifier is told when a feed has been (re)populated. The UDP notify
// server implements it; nil disables announcements.
type Notifier interface {
	FeedRefreshed(category string, count int)
}

// Service assembles catalog feeds: upstream fetch, processing, TTL caching
// and refresh announcements.
type Service struct {
	Source   Source
	Cache    *cache.Store
	Notifier Notifier

	// batchDelay spaces pool fetch batches to stay polite to the upstream
	// API. Tests set it to zero.
	batchDelay time.Duration
	rng        *rand.Rand
	rngMu      sync.Mutex
}

func NewService(src Source, store *cache.Store, notifier Notifier) *Service {
	return &Service{
		Source:     src,
		Cache:      store,
		Notifier:   notifier,
		batchDelay: 500 * time.Millisecond,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Categories lists the fixed category names in a stable order.
func Categories() []string {
	return []string{"suggested", "fantasy", "romance", "mystery", "scifi", "horror", "nonfiction"}
}

// Category returns the processed feed for a category, serving from cache
// when the entry is younger than a day.
func (s *Service) Category(ctx context.Context, name string) ([]models.Book, error) {
	queries, ok := CategoryQueries[name]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", name)
	}

	key := FeedKeyPrefix + name
	if raw, hit, err := s.Cache.Get(ctx, key, cache.FeedTTL); err != nil {
		return nil, err
	} else if hit {
		var books []models.Book
		if err := json.Unmarshal(raw, &books); err == nil {
			return books, nil
		}
		// A corrupt entry is treated as a miss and overwritten below.
		log.Printf("[catalog] corrupt cache entry %s, refetching", key)
	}

	volumes := s.fetchAll(ctx, queries, categoryFetchSize)
	books := ProcessFeed(volumes)

	raw, err := json.Marshal(books)
	if err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}
	if err := s.Cache.Set(ctx, key, raw); err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.FeedRefreshed(name, len(books))
	}
	return books, nil
}

// Featured returns the two hero-banner books for a genre, drawn from the
// genre's refresh queries. Unknown genres fall back to the suggested set.
func (s *Service) Featured(ctx context.Context, genre string) ([]models.Book, error) {
	queries, ok := RefreshQueries[genre]
	if !ok {
		queries = RefreshQueries["suggested"]
	}

	volumes := s.fetchAll(ctx, queries[:2], 5)
	books := ProcessFeed(volumes)
	if len(books) > 2 {
		books = books[:2]
	}
	return books, nil
}

// Search runs a free-text query straight through to the upstream API.
// Queries under two characters return nothing, matching the UI debounce.
func (s *Service) Search(ctx context.Context, query string) ([]models.Book, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []models.Book{}, nil
	}

	volumes, err := s.Source.Fetch(ctx, query, searchFetchSize)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	// Search results skip the feed filter: the user asked for exactly this.
	out := make([]models.Book, 0, len(volumes))
	for _, v := range volumes {
		out = append(out, toBook(v))
	}
	return out, nil
}

// MicroGenrePool returns the wide book pool the micro-genre generator runs
// over, cached for a week. A cold pool fetches a shuffled subset of the
// seed queries in small batches.
func (s *Service) MicroGenrePool(ctx context.Context) ([]models.Book, error) {
	if raw, hit, err := s.Cache.Get(ctx, PoolKey, cache.PoolTTL); err != nil {
		return nil, err
	} else if hit {
		var books []models.Book
		if err := json.Unmarshal(raw, &books); err == nil {
			return books, nil
		}
		log.Printf("[catalog] corrupt cache entry %s, refetching", PoolKey)
	}

	queries := s.shuffledQueries()
	if len(queries) > poolQueryCount {
		queries = queries[:poolQueryCount]
	}

	var volumes []Volume
	for i := 0; i < len(queries); i += poolBatchSize {
		end := i + poolBatchSize
		if end > len(queries) {
			end = len(queries)
		}
		volumes = append(volumes, s.fetchAll(ctx, queries[i:end], poolFetchSize)...)

		if end < len(queries) && s.batchDelay > 0 {
			select {
			case <-time.After(s.batchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	books := ProcessPool(volumes)

	raw, err := json.Marshal(books)
	if err != nil {
		return nil, fmt.Errorf("encode pool: %w", err)
	}
	if err := s.Cache.Set(ctx, PoolKey, raw); err != nil {
		return nil, err
	}
	return books, nil
}

// AllBooks merges every cached feed plus the micro-genre pool into one
// deduplicated list, tagging each book with its source category.
func (s *Service) AllBooks(ctx context.Context) ([]SourcedBook, error) {
	var all []SourcedBook
	seen := make(map[string]struct{})

	add := func(b models.Book, source string) {
		key := b.Key()
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		all = append(all, SourcedBook{Book: b, SourceCategory: source})
	}

	for _, name := range Categories() {
		raw, hit, err := s.Cache.Get(ctx, FeedKeyPrefix+name, cache.FeedTTL)
		if err != nil {
			return nil, err
		}
		if !hit {
			continue
		}
		var books []models.Book
		if err := json.Unmarshal(raw, &books); err != nil {
			continue
		}
		for _, b := range books {
			add(b, name)
		}
	}

	if raw, hit, err := s.Cache.Get(ctx, PoolKey, cache.PoolTTL); err != nil {
		return nil, err
	} else if hit {
		var books []models.Book
		if err := json.Unmarshal(raw, &books); err == nil {
			for _, b := range books {
				add(b, "micro-genre")
			}
		}
	}

	return all, nil
}

// Warm populates every category feed and the micro-genre pool. Failures are
// isolated per category so one bad upstream response does not void the run.
func (s *Service) Warm(ctx context.Context) error {
	var firstErr error
	for _, name := range Categories() {
		if _, err := s.Category(ctx, name); err != nil {
			log.Printf("[catalog] warm %s: %v", name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if _, err := s.MicroGenrePool(ctx); err != nil {
		log.Printf("[catalog] warm pool: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SourcedBook is a catalog book plus the feed it came from.
type SourcedBook struct {
	models.Book
	SourceCategory string `json:"source_category"`
}

// fetchAll runs the queries in parallel and merges whatever succeeds. A
// failed query only logs; the category renders from its siblings.
func (s *Service) fetchAll(ctx context.Context, queries []string, maxResults int) []Volume {
	results := make([][]Volume, len(queries))
	var wg sync.WaitGroup

	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			volumes, err := s.Source.Fetch(ctx, q, maxResults)
			if err != nil {
				log.Printf("[catalog] fetch %q: %v", q, err)
				return
			}
			results[i] = volumes
		}(i, q)
	}
	wg.Wait()

	var merged []Volume
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}

func (s *Service) shuffledQueries() []string {
	out := append([]string{}, MicroGenreQueries...)
	s.rngMu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.rngMu.Unlock()
	return out
}

// SeedRNG makes pool query selection deterministic. Test hook.
func (s *Service) SeedRNG(seed int64) {
	s.rngMu.Lock()
	s.rng = rand.New(rand.NewSource(seed))
	s.rngMu.Unlock()
}

// SetBatchDelay overrides the pause between pool fetch batches.
func (s *Service) SetBatchDelay(d time.Duration) {
	s.batchDelay = d
}
