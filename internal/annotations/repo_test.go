package annotations

import (
	"context"
	"testing"
	"time"

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

func TestUpsertThenGet(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	finished := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	err := r.Upsert(ctx, models.Annotation{
		UserID:     "u1",
		BookKey:    "dune",
		Rating:     5,
		Review:     "Spice and politics.",
		FinishedAt: &finished,
	})
	require.NoError(t, err)

	a, err := r.Get(ctx, "u1", "dune")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 5, a.Rating)
	assert.Equal(t, "Spice and politics.", a.Review)
	require.NotNil(t, a.FinishedAt)
	assert.Equal(t, finished, *a.FinishedAt)
	assert.False(t, a.UpdatedAt.IsZero())
}

func TestUpsertReplaces(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, models.Annotation{UserID: "u1", BookKey: "dune", Rating: 3}))
	require.NoError(t, r.Upsert(ctx, models.Annotation{UserID: "u1", BookKey: "dune", Rating: 5, Review: "better on reread"}))

	a, err := r.Get(ctx, "u1", "dune")
	require.NoError(t, err)
	assert.Equal(t, 5, a.Rating)
	assert.Equal(t, "better on reread", a.Review)
	assert.Nil(t, a.FinishedAt, "replacing without finished_at clears it")
}

func TestGetMissingIsNil(t *testing.T) {
	r := testRepo(t)

	a, err := r.Get(context.Background(), "u1", "ghost")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestDeleteAnnotation(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, models.Annotation{UserID: "u1", BookKey: "dune", Rating: 4}))

	ok, err := r.Delete(ctx, "u1", "dune")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Delete(ctx, "u1", "dune")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotesLifecycle(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	n1, err := r.AddNote(ctx, "u1", "dune", 42, "Fear is the mind-killer.")
	require.NoError(t, err)
	require.NotEmpty(t, n1.ID)

	_, err = r.AddNote(ctx, "u1", "dune", 7, "Earlier note.")
	require.NoError(t, err)
	_, err = r.AddNote(ctx, "u1", "other-book", 1, "Unrelated.")
	require.NoError(t, err)

	notes, total, err := r.ListNotes(ctx, "u1", "dune", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, notes, 2)
	assert.Equal(t, 7, notes[0].Page, "notes come back in page order")
	assert.Equal(t, 42, notes[1].Page)

	ok, err := r.DeleteNote(ctx, "u1", n1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Someone else's note id does not delete.
	ok, err = r.DeleteNote(ctx, "u2", notes[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListNotesPaging(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := r.AddNote(ctx, "u1", "dune", i, "note")
		require.NoError(t, err)
	}

	notes, total, err := r.ListNotes(ctx, "u1", "dune", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, notes, 2)
	assert.Equal(t, 3, notes[0].Page)
	assert.Equal(t, 4, notes[1].Page)
}

func TestAnnotationsAreScopedPerUser(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, models.Annotation{UserID: "alice", BookKey: "dune", Rating: 5}))

	a, err := r.Get(ctx, "bob", "dune")
	require.NoError(t, err)
	assert.Nil(t, a)
}
