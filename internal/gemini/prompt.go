package gemini

import (
	"fmt"
	"strings"

	"github.com/neexbeast/citywalk/internal/tour"
)

var languageNames = map[string]string{
	"es": "Spanish",
	"en": "English",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ca": "Catalan",
	"nl": "Dutch",
	"ja": "Japanese",
	"zh": "Chinese",
}

// LanguageName maps a language code such as "es" or "pt-BR" to the English
// name used in prompts. Unknown codes are returned unchanged.
func LanguageName(code string) string {
	base := strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(base, "-_"); i > 0 {
		base = base[:i]
	}
	if name, ok := languageNames[base]; ok {
		return name
	}
	if base == "" {
		return languageNames["en"]
	}
	return code
}

// TourPrompt builds the tour generation prompt for city.
func TourPrompt(city, lang string) string {
	categories := make([]string, len(tour.Categories))
	for i, c := range tour.Categories {
		categories[i] = string(c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert local guide in %s. ", city)
	fmt.Fprintf(&b, "Design 3 distinct walking tours of the city, written in %s.\n", LanguageName(lang))
	b.WriteString("Each tour has 4 to 6 stops that are real places within walking distance of each other.\n")
	b.WriteString("Respond only with a JSON array. Each tour object has: ")
	b.WriteString(`"title", "description", "duration" (e.g. "2h"), "distance" (km, number), "difficulty", "theme", "stops". `)
	b.WriteString(`Each stop has: "name", "description", "latitude", "longitude", "category", `)
	b.WriteString(`"hook", "story", "secret", and an optional "photoSpot" with "angle", "bestTime", "caption".`)
	b.WriteString("\n")
	fmt.Fprintf(&b, "category must be one of: %s.\n", strings.Join(categories, ", "))
	b.WriteString("hook is one striking sentence, story is a short narrated paragraph, secret is a little-known fact.")
	return b.String()
}

// NarrationPrompt wraps text with speaking instructions for the speech model.
func NarrationPrompt(text, lang string) string {
	return fmt.Sprintf("Read aloud in %s, in a warm and engaging tour guide voice:\n%s", LanguageName(lang), text)
}
