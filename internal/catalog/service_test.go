package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/cache"
	"bookify/pkg/database"
)

// fakeSource records queries and serves canned volumes.
type fakeSource struct {
	mu      sync.Mutex
	calls   []string
	volumes map[string][]Volume
	err     error
}

func (f *fakeSource) Fetch(_ context.Context, query string, _ int) ([]Volume, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.volumes[query], nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) FeedRefreshed(category string, count int) {
	n.mu.Lock()
	n.events = append(n.events, fmt.Sprintf("%s:%d", category, count))
	n.mu.Unlock()
}

func testService(t *testing.T, src Source) (*Service, *recordingNotifier) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	n := &recordingNotifier{}
	svc := NewService(src, cache.NewStore(db), n)
	svc.SetBatchDelay(0)
	svc.SeedRNG(1)
	return svc, n
}

func TestCategoryFetchesOncePerTTL(t *testing.T) {
	src := &fakeSource{volumes: map[string][]Volume{
		"Colleen Hoover": {vol("1", "It Ends with Us", 1000, 4.5)},
	}}
	svc, notifier := testService(t, src)
	ctx := context.Background()

	books, err := svc.Category(ctx, "romance")
	require.NoError(t, err)
	require.Len(t, books, 1)
	firstCalls := src.callCount()
	assert.Equal(t, len(CategoryQueries["romance"]), firstCalls)

	// Second read is served from cache; no new upstream calls.
	books, err = svc.Category(ctx, "romance")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, firstCalls, src.callCount())

	// The notifier fired once, on the cold fetch.
	assert.Equal(t, []string{"romance:1"}, notifier.events)
}

func TestCategoryUnknown(t *testing.T) {
	svc, _ := testService(t, &fakeSource{})

	_, err := svc.Category(context.Background(), "cooking")
	require.Error(t, err)
}

func TestCategoryToleratesPartialFailure(t *testing.T) {
	// Source fails wholesale; the category still renders as empty rather
	// than erroring, matching one query failing out of several.
	src := &fakeSource{err: fmt.Errorf("upstream down")}
	svc, _ := testService(t, src)

	books, err := svc.Category(context.Background(), "fantasy")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestSearchShortQuery(t *testing.T) {
	src := &fakeSource{}
	svc, _ := testService(t, src)

	books, err := svc.Search(context.Background(), " d ")
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.Zero(t, src.callCount(), "short queries never hit upstream")
}

func TestSearchMapsWithoutFeedFilter(t *testing.T) {
	// Search results keep entries a feed would drop (no cover image).
	bare := Volume{ID: "x", VolumeInfo: VolumeInfo{Title: "Obscure", Authors: []string{"A"}}}
	src := &fakeSource{volumes: map[string][]Volume{"obscure": {bare}}}
	svc, _ := testService(t, src)

	books, err := svc.Search(context.Background(), "obscure")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Obscure", books[0].Title)
}

func TestMicroGenrePoolCachesForAWeek(t *testing.T) {
	src := &fakeSource{volumes: map[string][]Volume{}}
	for _, q := range MicroGenreQueries {
		src.volumes[q] = []Volume{vol("id-"+q, "Book "+q, 10, 4)}
	}
	svc, _ := testService(t, src)
	ctx := context.Background()

	books, err := svc.MicroGenrePool(ctx)
	require.NoError(t, err)
	assert.Equal(t, poolQueryCount, src.callCount())
	assert.Equal(t, poolQueryCount, len(books))

	_, err = svc.MicroGenrePool(ctx)
	require.NoError(t, err)
	assert.Equal(t, poolQueryCount, src.callCount(), "warm pool must not refetch")
}

func TestAllBooksMergesFeedsAndPool(t *testing.T) {
	src := &fakeSource{volumes: map[string][]Volume{
		"Colleen Hoover": {vol("ch1", "It Ends with Us", 1000, 4.5)},
		"Stephen King":   {vol("sk1", "The Shining", 2000, 4.7)},
	}}
	svc, _ := testService(t, src)
	ctx := context.Background()

	_, err := svc.Category(ctx, "romance")
	require.NoError(t, err)
	_, err = svc.Category(ctx, "horror")
	require.NoError(t, err)

	all, err := svc.AllBooks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	sources := map[string]string{}
	for _, b := range all {
		sources[b.ID] = b.SourceCategory
	}
	assert.Equal(t, "romance", sources["ch1"])
	assert.Equal(t, "horror", sources["sk1"])
}

func TestClientAgainstHTTPFake(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		assert.Equal(t, "dune", r.URL.Query().Get("q"))
		assert.Equal(t, "relevance", r.URL.Query().Get("orderBy"))
		assert.Equal(t, "books", r.URL.Query().Get("printType"))
		assert.Equal(t, "en", r.URL.Query().Get("langRestrict"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []Volume{vol("d1", "Dune", 9000, 4.8)},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	volumes, err := client.Fetch(context.Background(), "dune", 15)
	require.NoError(t, err)
	require.Len(t, volumes, 1)
	assert.Equal(t, "Dune", volumes[0].VolumeInfo.Title)
}

func TestClientNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	_, err := client.Fetch(context.Background(), "dune", 15)
	require.Error(t, err)
}
