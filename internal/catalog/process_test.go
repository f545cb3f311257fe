package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vol(id, title string, ratings int, avg float64) Volume {
	return Volume{
		ID: id,
		VolumeInfo: VolumeInfo{
			Title:         title,
			Authors:       []string{"Some Author"},
			Categories:    []string{"Fiction"},
			AverageRating: avg,
			RatingsCount:  ratings,
			ImageLinks:    ImageLinks{Thumbnail: "http://img/" + id},
		},
	}
}

func TestProcessFeedDropsIncompleteVolumes(t *testing.T) {
	noImage := vol("1", "No Cover", 10, 4)
	noImage.VolumeInfo.ImageLinks = ImageLinks{}

	noAuthor := vol("2", "No Author", 10, 4)
	noAuthor.VolumeInfo.Authors = nil

	noTitle := vol("3", "", 10, 4)

	got := ProcessFeed([]Volume{noImage, noAuthor, noTitle, vol("4", "Keeper", 10, 4)})

	require.Len(t, got, 1)
	assert.Equal(t, "Keeper", got[0].Title)
}

func TestProcessFeedSmallThumbnailSuffices(t *testing.T) {
	v := vol("1", "Small Cover", 1, 5)
	v.VolumeInfo.ImageLinks = ImageLinks{SmallThumbnail: "http://small"}

	got := ProcessFeed([]Volume{v})

	require.Len(t, got, 1)
	assert.Equal(t, "http://small", got[0].Image)
}

func TestProcessFeedDeduplicatesByTitle(t *testing.T) {
	got := ProcessFeed([]Volume{
		vol("1", "The Hobbit", 100, 4),
		vol("2", "  the hobbit ", 500, 5),
		vol("3", "Other", 1, 1),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID, "first occurrence wins the dedupe")
}

func TestProcessFeedBlacklist(t *testing.T) {
	got := ProcessFeed([]Volume{
		vol("1", "SparkNotes: Hamlet", 10, 4),
		vol("2", "2024 Writer's Market", 10, 4),
		vol("3", "Summary of Atomic Habits", 10, 4),
		vol("4", "A Real Novel", 10, 4),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "A Real Novel", got[0].Title)
}

func TestProcessPoolAllowsSummaryTitles(t *testing.T) {
	got := ProcessPool([]Volume{
		vol("1", "A Summary of the War", 10, 4),
		vol("2", "CliffsNotes on Gatsby", 10, 4),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "A Summary of the War", got[0].Title)
}

func TestProcessFeedSortsByWeightedRating(t *testing.T) {
	got := ProcessFeed([]Volume{
		vol("low", "Low", 10, 3),      // 30
		vol("high", "High", 1000, 4),  // 4000
		vol("mid", "Mid", 100, 4.5),   // 450
		vol("none", "Unrated", 0, 0),  // 0
	})

	require.Len(t, got, 4)
	assert.Equal(t, []string{"high", "mid", "low", "none"},
		[]string{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
}

func TestProcessFeedCapsAtLimit(t *testing.T) {
	raw := make([]Volume, 0, FeedLimit+10)
	for i := 0; i < FeedLimit+10; i++ {
		raw = append(raw, vol(fmt.Sprintf("id%d", i), fmt.Sprintf("Title %d", i), i, 4))
	}

	got := ProcessFeed(raw)

	assert.Len(t, got, FeedLimit)
}

func TestToBookFieldMapping(t *testing.T) {
	v := Volume{
		ID: "abc",
		VolumeInfo: VolumeInfo{
			Title:      "Dune",
			Authors:    []string{"Frank Herbert", "Someone Else"},
			Categories: []string{"Science Fiction", "Classics"},
			PageCount:  412,
			ImageLinks: ImageLinks{Thumbnail: "http://img"},
		},
	}

	b := toBook(v)

	assert.Equal(t, "Frank Herbert", b.Author)
	assert.Equal(t, []string{"Frank Herbert", "Someone Else"}, b.Authors)
	assert.Equal(t, "Science Fiction", b.Genre)
	assert.Equal(t, "No description.", b.Description)
	assert.Equal(t, 412, b.PageCount)
}

func TestToBookFallbacks(t *testing.T) {
	b := toBook(Volume{ID: "x", VolumeInfo: VolumeInfo{Title: "Bare"}})

	assert.Equal(t, "Unknown", b.Author)
	assert.Equal(t, "Unspecified", b.Genre)
}
