package microgenre

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/catalog"
	"bookify/pkg/models"
)

func sourced(title, desc string, categories []string, source string) catalog.SourcedBook {
	return catalog.SourcedBook{
		Book: models.Book{
			Title:       title,
			Description: desc,
			Categories:  categories,
		},
		SourceCategory: source,
	}
}

func TestNameForComposesDescriptors(t *testing.T) {
	b := sourced("Gone", "A dark psychological story about a murder investigation.",
		[]string{"Thriller"}, "mystery")

	assert.Equal(t, "Dark Psychological Crime Thrillers", NameFor(b))
}

func TestNameForRomanceRewrites(t *testing.T) {
	cases := []struct {
		desc string
		want string
	}{
		{"An enemies to lovers story.", "Enemies-to-Lovers Romance"},
		{"A second chance at love.", "Second-Chance Romance"},
		{"A steamy affair in Rome.", "Steamy Romance"},
		{"A sweet small-town love.", "Sweet Romance"},
		{"Two people meet.", "Romance"},
	}
	for _, tc := range cases {
		b := sourced("T", tc.desc, []string{"Romance"}, "romance")
		assert.Equal(t, tc.want, NameFor(b), "desc: %s", tc.desc)
	}
}

func TestNameForFantasyDragonFromTitle(t *testing.T) {
	b := sourced("The Dragon Keeper", "A tale of adventure.", []string{"Fantasy"}, "fantasy")

	assert.Equal(t, "Dragon Fantasy", NameFor(b))
}

func TestNameForFallsBackToSourceCategory(t *testing.T) {
	b := sourced("Plain", "Nothing notable here.", nil, "scifi")
	assert.Equal(t, "Space Sci-Fi Adventures", NameFor(b))

	b = sourced("Plain", "Nothing notable here.", nil, "")
	assert.Equal(t, "Popular Reads", NameFor(b))
}

func TestNameForReorders(t *testing.T) {
	// Setting detected before mood in the metadata still reads mood first.
	b := sourced("T", "A historical and heartbreaking emotional tale of war.",
		[]string{"Romance"}, "romance")

	name := NameFor(b)
	assert.Equal(t, "Emotional Historical Romance", name)
}

func TestConflictsWithFixed(t *testing.T) {
	assert.True(t, ConflictsWithFixed("Romance"))
	assert.True(t, ConflictsWithFixed("fantasy"))
	assert.True(t, ConflictsWithFixed("Horror Stories"))
	assert.True(t, ConflictsWithFixed("Mystery Novels"))

	assert.False(t, ConflictsWithFixed("Dark Psychological Crime Thrillers"))
	assert.False(t, ConflictsWithFixed("Enemies-to-Lovers Romance"))
	assert.False(t, ConflictsWithFixed("Space Sci-Fi"))
}

func poolWith(genreDescs map[string]int) []catalog.SourcedBook {
	var out []catalog.SourcedBook
	for desc, n := range genreDescs {
		for i := 0; i < n; i++ {
			out = append(out, sourced(
				fmt.Sprintf("%s %d", desc, i), desc, []string{"Thriller"}, "mystery"))
		}
	}
	return out
}

func TestGenerateThreshold(t *testing.T) {
	pool := poolWith(map[string]int{
		"a dark murder case":  5, // Dark Crime Thrillers
		"a spy in the castle": 2, // Spy Thrillers, below threshold
	})

	genres := Generate(pool, rand.New(rand.NewSource(1)))

	require.Len(t, genres, 1)
	assert.Equal(t, "Dark Crime Thrillers", genres[0].Name)
	assert.Len(t, genres[0].Books, 5)
}

func TestGenerateSkipsConflicting(t *testing.T) {
	var pool []catalog.SourcedBook
	for i := 0; i < 6; i++ {
		pool = append(pool, sourced(fmt.Sprintf("Plain %d", i), "nothing here",
			[]string{"Romance"}, "romance"))
	}

	genres := Generate(pool, rand.New(rand.NewSource(1)))

	assert.Empty(t, genres, "a bare Romance group restates a fixed category")
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	pool := poolWith(map[string]int{
		"a dark murder case":           5,
		"a gripping spy thriller plot": 5,
		"a psychological murder twist": 5,
	})

	first := Generate(pool, rand.New(rand.NewSource(7)))
	second := Generate(pool, rand.New(rand.NewSource(7)))

	assert.Equal(t, first, second)
}

func TestGenerateSelectionBounds(t *testing.T) {
	// 12 distinct genres available; the selection stays within 6..10.
	var pool []catalog.SourcedBook
	genres := []string{"Romance", "Thriller", "Fantasy", "Horror", "Mystery", "Science Fiction"}
	moods := []string{"a dark tale", "a heartwarming tale"}
	for _, g := range genres {
		for _, m := range moods {
			for i := 0; i < MinBooksPerGenre; i++ {
				pool = append(pool, sourced(
					fmt.Sprintf("%s %s %d", g, m, i), m, []string{g}, ""))
			}
		}
	}

	got := Generate(pool, rand.New(rand.NewSource(3)))

	assert.GreaterOrEqual(t, len(got), MinShown)
	assert.LessOrEqual(t, len(got), MaxShown)
}
