package shelf

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/pkg/database"
	"bookify/pkg/models"
)

func testRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewRepo(db)
}

func TestRepoCreateFirstShelfBecomesCurrent(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	s, err := r.Create(ctx, "u1", DefaultShelfName)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.ID)
	require.Len(t, s.Rows, 1)

	id, err := r.CurrentID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	// Second shelf does not steal the pointer.
	s2, err := r.Create(ctx, "u1", "Sci-Fi")
	require.NoError(t, err)
	assert.Equal(t, int64(2), s2.ID)

	id, err = r.CurrentID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestRepoSaveRoundTrip(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	s, err := r.Create(ctx, "u1", DefaultShelfName)
	require.NoError(t, err)

	require.NoError(t, AddBook(s, book("Dune")))
	require.NoError(t, AddBook(s, book("Hyperion")))
	require.NoError(t, r.Save(ctx, "u1", s))

	got, err := r.Get(ctx, "u1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalBooks())
	assert.Equal(t, "Dune", got.Rows[0].Books[0].Title)
	assert.Equal(t, got.Books, Flatten(got))
}

func TestRepoGetMissing(t *testing.T) {
	r := testRepo(t)

	_, err := r.Get(context.Background(), "u1", 42)
	require.ErrorIs(t, err, ErrShelfNotFound)

	err = r.Save(context.Background(), "u1", &models.Shelf{ID: 42, Rows: []models.Row{{ID: 1}}})
	require.ErrorIs(t, err, ErrShelfNotFound)
}

func TestRepoUsersAreIsolated(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "alice", "Alice's")
	require.NoError(t, err)

	_, err = r.Get(ctx, "bob", 1)
	require.ErrorIs(t, err, ErrShelfNotFound)

	shelves, err := r.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, shelves)
}

func TestRepoMirrorFollowsCurrentShelf(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	s1, err := r.Create(ctx, "u1", "First")
	require.NoError(t, err)
	s2, err := r.Create(ctx, "u1", "Second")
	require.NoError(t, err)

	require.NoError(t, AddBook(s1, book("On First")))
	require.NoError(t, r.Save(ctx, "u1", s1))
	require.NoError(t, AddBook(s2, book("On Second")))
	require.NoError(t, r.Save(ctx, "u1", s2))

	// Shelf 1 is current, so the mirror tracks it.
	books, err := r.Mirror(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "On First", books[0].Title)

	// Switching refreshes the mirror to the new current shelf.
	require.NoError(t, r.SetCurrent(ctx, "u1", s2.ID))
	books, err = r.Mirror(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "On Second", books[0].Title)
}

func TestRepoSetCurrentUnknownShelf(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "u1", "Only")
	require.NoError(t, err)

	require.ErrorIs(t, r.SetCurrent(ctx, "u1", 9), ErrShelfNotFound)

	id, err := r.CurrentID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id, "failed switch must not move the pointer")
}

func TestRepoMirrorEmptyForNewUser(t *testing.T) {
	r := testRepo(t)

	books, err := r.Mirror(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestRepoListMigratesLegacyDocs(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	// Simulate a document written before rows existed.
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO shelves (user_id, id, doc, position)
		VALUES ('u1', 1, ?, 1)
	`, `{"id":1,"name":"Old","books":[{"title":"A"},{"title":"B"},{"title":"C"},{"title":"D"},{"title":"E"},{"title":"F"}]}`)
	require.NoError(t, err)

	shelves, err := r.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, shelves, 1)
	require.Len(t, shelves[0].Rows, 2)
	assert.Len(t, shelves[0].Rows[0].Books, 5)
	assert.Equal(t, "F", shelves[0].Rows[1].Books[0].Title)
}

func TestRepoStorageQuota(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	s, err := r.Create(ctx, "u1", "Big")
	require.NoError(t, err)

	// An oversized embedded background pushes the doc past the cap.
	s.Settings.BackgroundImage = "data:image/png;base64," + strings.Repeat("A", MaxDocBytes)
	require.ErrorIs(t, r.Save(ctx, "u1", s), ErrStorageQuota)

	// The stored document is untouched.
	got, err := r.Get(ctx, "u1", s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Settings.BackgroundImage)
}
