package catalog

import (
	"sort"
	"strings"

	"bookify/pkg/models"
)

// FeedLimit caps a processed category feed.
const FeedLimit = 20

// Title substrings that mark study guides and trade directories rather than
// actual books. The pool variant drops "summary" because micro-genre pools
// tolerate looser matches.
var (
	feedBlacklist = []string{"sparknotes", "cliffsnotes", "writer's market", "writers market", "summary"}
	poolBlacklist = []string{"sparknotes", "cliffsnotes", "writer's market", "writers market"}
)

// ProcessFeed turns raw volumes into a display-ready category feed: covers
// required, one entry per title, junk filtered, most popular first, capped
// at FeedLimit.
func ProcessFeed(raw []Volume) []models.Book {
	return process(raw, feedBlacklist, FeedLimit)
}

// ProcessPool is the looser variant used for the micro-genre pool: same
// pipeline, no cap.
func ProcessPool(raw []Volume) []models.Book {
	return process(raw, poolBlacklist, 0)
}

func process(raw []Volume, blacklist []string, limit int) []models.Book {
	kept := make([]Volume, 0, len(raw))
	seen := make(map[string]struct{})

	for _, v := range raw {
		info := v.VolumeInfo
		if info.Thumbnail() == "" || info.Title == "" || len(info.Authors) == 0 {
			continue
		}

		title := strings.ToLower(strings.TrimSpace(info.Title))
		if _, dup := seen[title]; dup {
			continue
		}
		if blacklisted(title, blacklist) {
			continue
		}

		seen[title] = struct{}{}
		kept = append(kept, v)
	}

	// Popularity = volume of ratings weighted by how good they are.
	sort.SliceStable(kept, func(i, j int) bool {
		return score(kept[i]) > score(kept[j])
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}

	out := make([]models.Book, 0, len(kept))
	for _, v := range kept {
		out = append(out, toBook(v))
	}
	return out
}

func score(v Volume) float64 {
	return float64(v.VolumeInfo.RatingsCount) * v.VolumeInfo.AverageRating
}

func blacklisted(lowerTitle string, blacklist []string) bool {
	for _, word := range blacklist {
		if strings.Contains(lowerTitle, word) {
			return true
		}
	}
	return false
}

// toBook maps a volume to the shelf book shape, filling the single-value
// author and genre fields from the first list entry.
func toBook(v Volume) models.Book {
	info := v.VolumeInfo

	author := "Unknown"
	if len(info.Authors) > 0 {
		author = info.Authors[0]
	}
	genre := "Unspecified"
	if len(info.Categories) > 0 {
		genre = info.Categories[0]
	}
	desc := info.Description
	if desc == "" {
		desc = "No description."
	}

	return models.Book{
		ID:          v.ID,
		Title:       info.Title,
		Image:       info.Thumbnail(),
		Author:      author,
		Authors:     info.Authors,
		Genre:       genre,
		Categories:  info.Categories,
		Description: desc,
		PageCount:   info.PageCount,
	}
}
