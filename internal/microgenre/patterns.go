// Package microgenre invents Netflix-style shelf rows ("Dark Psychological
// Crime Thrillers") by mining book descriptions for mood, setting and tone
// markers, then grouping books under the composed names.
package microgenre

// Descriptor vocabularies. A word list earns its descriptor when any entry
// appears in the book's description.
var (
	darkWords      = []string{"dark", "gritty", "brutal"}
	lightWords     = []string{"heartwarming", "feel-good", "uplifting"}
	emotionalWords = []string{"emotional", "heartbreaking", "tear-jerker"}
	intenseWords   = []string{"intense", "gripping", "suspenseful"}

	psychologicalWords = []string{"psychological", "mind-bending"}

	contemporaryWords = []string{"contemporary", "modern"}
	historicalWords   = []string{"historical"}
	dystopianWords    = []string{"dystopian", "post-apocalyptic"}

	bestsellerWords = []string{"bestseller", "#1", "new york times"}
	awardWords      = []string{"award-winning", "acclaimed"}
)

// Descriptor buckets used to reorder composed names into mood, setting,
// genre order.
var (
	moodDescriptors    = []string{"Dark", "Feel-Good", "Emotional", "Intense", "Bestselling", "Award-Winning"}
	settingDescriptors = []string{"Contemporary", "Historical", "Epic", "Dystopian"}
)

// The app's fixed sidebar categories. A generated name colliding with one
// of these is discarded; the fixed rows already cover it.
var fixedCategoryPatterns = []string{
	"suggested", "fantasy", "horror", "romance", "mystery",
	"sci-fi", "scifi", "science fiction", "non-fiction", "nonfiction", "non fiction",
}

// genericSuffixes are appendages that do not make a name distinct from the
// fixed category it extends.
var genericSuffixes = []string{
	" books", " reads", " stories", " worlds", " adventures", " thrillers",
}

// Fallback names when a book's metadata yields no descriptors, keyed by the
// feed it came from.
var sourceFallbacks = map[string]string{
	"mystery":    "Crime & Mystery",
	"horror":     "Supernatural Horror",
	"scifi":      "Space Sci-Fi",
	"nonfiction": "Non-Fiction Reads",
	"suggested":  "Bestselling Fiction",
}
