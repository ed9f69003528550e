package tour

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type fallbackText struct {
	title, description, stopName, stopDescription string
}

var fallbackTexts = map[string]fallbackText{
	"es": {"Paseo por %s", "Un recorrido esencial por el centro de %s.", "Centro histórico", "Empieza tu paseo en el corazón de la ciudad."},
	"en": {"A walk through %s", "An essential stroll through the centre of %s.", "Historic centre", "Start your walk in the heart of the city."},
	"fr": {"Promenade à %s", "Une balade essentielle au cœur de %s.", "Centre historique", "Commencez votre promenade au cœur de la ville."},
	"de": {"Spaziergang durch %s", "Ein grundlegender Rundgang durch das Zentrum von %s.", "Altstadt", "Beginnen Sie Ihren Spaziergang im Herzen der Stadt."},
	"it": {"Passeggiata a %s", "Un percorso essenziale nel centro di %s.", "Centro storico", "Inizia la passeggiata nel cuore della città."},
	"pt": {"Passeio por %s", "Um percurso essencial pelo centro de %s.", "Centro histórico", "Comece o seu passeio no coração da cidade."},
}

// Fallback synthesizes the single-stop tour returned when nothing else
// resolved. Only the top-level title and description are localized for the
// tour itself; unknown languages use English.
func Fallback(city, lang string) []Tour {
	txt, ok := fallbackTexts[strings.ToLower(strings.TrimSpace(lang))]
	if !ok {
		txt = fallbackTexts["en"]
	}

	name := strings.TrimSpace(city)
	if i := strings.IndexByte(name, ','); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	if name == "" {
		name = "?"
	}

	return []Tour{{
		ID:          uuid.NewString(),
		City:        name,
		Title:       fmt.Sprintf(txt.title, name),
		Description: fmt.Sprintf(txt.description, name),
		Duration:    "1h",
		Difficulty:  "easy",
		Theme:       string(CategoryCulture),
		Stops: []Stop{{
			ID:          uuid.NewString(),
			Name:        txt.stopName,
			Description: txt.stopDescription,
			Category:    CategoryCulture,
		}},
	}}
}
