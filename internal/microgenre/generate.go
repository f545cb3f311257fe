package microgenre

import (
	"math/rand"
	"sort"
	"strings"

	"bookify/internal/catalog"
)

// A genre needs this many books before it is worth a shelf row.
const MinBooksPerGenre = 4

// Between MinShown and MaxShown genres appear per generation, picked at
// random so the home page rotates.
const (
	MinShown = 6
	MaxShown = 10
)

type MicroGenre struct {
	Name  string                `json:"name"`
	Books []catalog.SourcedBook `json:"books"`
}

// Generate groups the pool into named micro-genres, drops the thin and the
// redundant ones, and returns a random selection. The same rng seed over the
// same pool yields the same selection.
func Generate(books []catalog.SourcedBook, rng *rand.Rand) []MicroGenre {
	groups := make(map[string][]catalog.SourcedBook)

	for _, b := range books {
		name := NameFor(b)
		if ConflictsWithFixed(name) {
			continue
		}
		groups[name] = append(groups[name], b)
	}

	names := make([]string, 0, len(groups))
	for name, members := range groups {
		if len(members) >= MinBooksPerGenre {
			names = append(names, name)
		}
	}
	// Map order is random; sort before shuffling so the rng seed alone
	// determines the outcome.
	sort.Strings(names)
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	max := MaxShown
	if len(names) < max {
		max = len(names)
	}
	min := MinShown
	if len(names) < min {
		min = len(names)
	}
	n := min
	if max > min {
		n = min + rng.Intn(max-min+1)
	}

	out := make([]MicroGenre, 0, n)
	for _, name := range names[:n] {
		out = append(out, MicroGenre{Name: name, Books: groups[name]})
	}
	return out
}

// NameFor composes a micro-genre name from a book's metadata: popularity
// and mood markers from the description, a setting, the primary genre, then
// genre-specific rewrites for flavor.
func NameFor(b catalog.SourcedBook) string {
	desc := strings.ToLower(b.Description)
	title := strings.ToLower(b.Title)
	cats := make([]string, 0, len(b.Categories))
	for _, c := range b.Categories {
		cats = append(cats, strings.ToLower(c))
	}

	var parts []string

	if containsAny(desc, bestsellerWords) {
		parts = append(parts, "Bestselling")
	} else if containsAny(desc, awardWords) {
		parts = append(parts, "Award-Winning")
	}

	if containsAny(desc, darkWords) {
		parts = append(parts, "Dark")
	} else if containsAny(desc, lightWords) {
		parts = append(parts, "Feel-Good")
	} else if containsAny(desc, emotionalWords) {
		parts = append(parts, "Emotional")
	} else if containsAny(desc, intenseWords) {
		parts = append(parts, "Intense")
	}

	if containsAny(desc, psychologicalWords) {
		parts = append(parts, "Psychological")
	}

	if containsAny(desc, contemporaryWords) || catContains(cats, "contemporary") {
		parts = append(parts, "Contemporary")
	} else if containsAny(desc, historicalWords) || catContains(cats, "historical") {
		parts = append(parts, "Historical")
	} else if strings.Contains(desc, "epic") || strings.Contains(title, "epic") {
		parts = append(parts, "Epic")
	} else if containsAny(desc, dystopianWords) {
		parts = append(parts, "Dystopian")
	}

	if pg := primaryGenre(cats); pg != "" && !partsContain(parts, pg) {
		parts = append(parts, pg)
	}

	if len(parts) == 0 {
		parts = strings.Fields(fallbackName(b, desc))
	}

	if len(parts) >= 3 {
		parts = reorder(parts)
	}
	name := strings.Join(parts, " ")

	return rewrite(name, desc, title)
}

// ConflictsWithFixed reports whether a generated name just restates one of
// the app's fixed sidebar categories.
func ConflictsWithFixed(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))

	for _, pattern := range fixedCategoryPatterns {
		if lower == pattern || lower == pattern+"s" || strings.HasPrefix(lower, pattern+" ") {
			return true
		}
		for _, suffix := range genericSuffixes {
			if lower == pattern+suffix {
				return true
			}
		}
	}
	return false
}

func primaryGenre(cats []string) string {
	switch {
	case catContains(cats, "romance"):
		return "Romance"
	case catContains(cats, "thriller") || catContains(cats, "suspense"):
		return "Thriller"
	case catContains(cats, "fantasy"):
		return "Fantasy"
	case catContains(cats, "horror"):
		return "Horror"
	case catContains(cats, "science fiction") || catContains(cats, "sci-fi"):
		return "Sci-Fi"
	case catContains(cats, "mystery"):
		return "Mystery"
	case catContains(cats, "fiction"):
		return "Fiction"
	}
	return ""
}

func fallbackName(b catalog.SourcedBook, desc string) string {
	switch b.SourceCategory {
	case "fantasy":
		if strings.Contains(desc, "young adult") {
			return "Young Adult Fantasy"
		}
		return "Epic Fantasy"
	case "romance":
		if strings.Contains(desc, "contemporary") {
			return "Contemporary Romance"
		}
		return "Romantic Fiction"
	}
	if name, ok := sourceFallbacks[b.SourceCategory]; ok {
		return name
	}
	if b.Genre != "" && b.Genre != "Unspecified" {
		if strings.Contains(strings.ToLower(b.Genre), "fiction") {
			return "Literary Fiction"
		}
		return b.Genre
	}
	return "Popular Reads"
}

// reorder sorts composed parts into mood, setting, genre order so names
// read naturally ("Dark Historical Romance", not "Historical Dark Romance").
func reorder(parts []string) []string {
	var mood, setting, rest []string
	for _, p := range parts {
		switch {
		case partsContain(moodDescriptors, p):
			mood = append(mood, p)
		case partsContain(settingDescriptors, p):
			setting = append(setting, p)
		default:
			rest = append(rest, p)
		}
	}
	out := append(mood, setting...)
	return append(out, rest...)
}

// rewrite swaps the bare genre word for a sharper variant when the
// description supports it.
func rewrite(name, desc, title string) string {
	if strings.Contains(name, "Thriller") {
		switch {
		case strings.Contains(desc, "serial killer") || strings.Contains(desc, "murder"):
			name = strings.Replace(name, "Thriller", "Crime Thrillers", 1)
		case strings.Contains(desc, "spy") || strings.Contains(desc, "espionage"):
			name = strings.Replace(name, "Thriller", "Spy Thrillers", 1)
		default:
			name = strings.Replace(name, "Thriller", "Thrillers", 1)
		}
	}

	if strings.Contains(name, "Romance") {
		switch {
		case strings.Contains(desc, "enemies to lovers") || strings.Contains(desc, "rival"):
			name = strings.Replace(name, "Romance", "Enemies-to-Lovers Romance", 1)
		case strings.Contains(desc, "second chance") || strings.Contains(desc, "reunion"):
			name = strings.Replace(name, "Romance", "Second-Chance Romance", 1)
		case strings.Contains(desc, "steamy") || strings.Contains(desc, "passionate") || strings.Contains(desc, "spicy"):
			name = strings.Replace(name, "Romance", "Steamy Romance", 1)
		case strings.Contains(desc, "sweet") || strings.Contains(desc, "clean"):
			name = strings.Replace(name, "Romance", "Sweet Romance", 1)
		}
	}

	if strings.Contains(name, "Fantasy") {
		switch {
		case strings.Contains(desc, "dragon") || strings.Contains(title, "dragon"):
			name = strings.Replace(name, "Fantasy", "Dragon Fantasy", 1)
		case strings.Contains(desc, "magic") || strings.Contains(desc, "wizard") || strings.Contains(desc, "witch"):
			name = strings.Replace(name, "Fantasy", "Magical Fantasy", 1)
		case strings.Contains(desc, "epic") || strings.Contains(desc, "quest"):
			name = strings.Replace(name, "Fantasy", "Epic Fantasy", 1)
		default:
			name = strings.Replace(name, "Fantasy", "Fantasy Adventures", 1)
		}
	}

	if strings.Contains(name, "Mystery") {
		switch {
		case strings.Contains(desc, "detective") || strings.Contains(desc, "investigator"):
			name = strings.Replace(name, "Mystery", "Detective Mysteries", 1)
		case strings.Contains(desc, "cozy") || strings.Contains(desc, "amateur sleuth"):
			name = strings.Replace(name, "Mystery", "Cozy Mysteries", 1)
		default:
			name = strings.Replace(name, "Mystery", "Mystery Novels", 1)
		}
	}

	if strings.Contains(name, "Horror") {
		switch {
		case strings.Contains(desc, "supernatural") || strings.Contains(desc, "ghost") || strings.Contains(desc, "paranormal"):
			name = strings.Replace(name, "Horror", "Supernatural Horror", 1)
		case strings.Contains(desc, "psychological") || strings.Contains(desc, "mind"):
			name = strings.Replace(name, "Horror", "Psychological Horror", 1)
		default:
			name = strings.Replace(name, "Horror", "Horror Stories", 1)
		}
	}

	if strings.Contains(name, "Sci-Fi") {
		switch {
		case strings.Contains(desc, "space") || strings.Contains(desc, "alien") || strings.Contains(desc, "planet"):
			name = strings.Replace(name, "Sci-Fi", "Space Sci-Fi", 1)
		case strings.Contains(desc, "dystopian") || strings.Contains(desc, "dystopia"):
			name = strings.Replace(name, "Sci-Fi", "Dystopian Sci-Fi", 1)
		default:
			name = strings.Replace(name, "Sci-Fi", "Sci-Fi Adventures", 1)
		}
	}

	if strings.Contains(name, "Fiction") && !strings.Contains(name, "Science Fiction") {
		switch {
		case strings.Contains(desc, "family saga") || strings.Contains(desc, "generation"):
			name = strings.Replace(name, "Fiction", "Family Sagas", 1)
		case strings.Contains(desc, "coming of age") || strings.Contains(desc, "young adult"):
			name = strings.Replace(name, "Fiction", "Coming-of-Age Stories", 1)
		case strings.Contains(desc, "literary") && !strings.Contains(name, "Literary"):
			name = strings.Replace(name, "Fiction", "Literary Fiction", 1)
		}
	}

	return name
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func catContains(cats []string, want string) bool {
	for _, c := range cats {
		if strings.Contains(c, want) {
			return true
		}
	}
	return false
}

func partsContain(parts []string, want string) bool {
	lower := strings.ToLower(want)
	for _, p := range parts {
		if strings.Contains(strings.ToLower(p), lower) || strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
