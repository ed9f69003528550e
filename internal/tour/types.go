package tour

import "strings"

// Category is the point-of-interest classification of a stop.
type Category string

const (
	CategoryHistorical   Category = "historical"
	CategoryFood         Category = "food"
	CategoryArt          Category = "art"
	CategoryNature       Category = "nature"
	CategoryPhoto        Category = "photo"
	CategoryCulture      Category = "culture"
	CategoryArchitecture Category = "architecture"
)

// Categories lists every valid stop category.
var Categories = []Category{
	CategoryHistorical,
	CategoryFood,
	CategoryArt,
	CategoryNature,
	CategoryPhoto,
	CategoryCulture,
	CategoryArchitecture,
}

// categorySynonyms maps loose generator output onto the fixed enumeration.
var categorySynonyms = map[string]Category{
	"history":      CategoryHistorical,
	"historic":     CategoryHistorical,
	"historia":     CategoryHistorical,
	"historico":    CategoryHistorical,
	"heritage":     CategoryHistorical,
	"gastronomy":   CategoryFood,
	"gastronomia":  CategoryFood,
	"restaurant":   CategoryFood,
	"market":       CategoryFood,
	"comida":       CategoryFood,
	"museum":       CategoryArt,
	"gallery":      CategoryArt,
	"arte":         CategoryArt,
	"park":         CategoryNature,
	"garden":       CategoryNature,
	"naturaleza":   CategoryNature,
	"viewpoint":    CategoryPhoto,
	"photography":  CategoryPhoto,
	"foto":         CategoryPhoto,
	"mirador":      CategoryPhoto,
	"cultura":      CategoryCulture,
	"monument":     CategoryArchitecture,
	"building":     CategoryArchitecture,
	"church":       CategoryArchitecture,
	"arquitectura": CategoryArchitecture,
}

// CoerceCategory maps raw onto the nearest valid category. Unknown values
// become CategoryCulture.
func CoerceCategory(raw string) Category {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range Categories {
		if v == string(c) {
			return c
		}
	}
	if c, ok := categorySynonyms[v]; ok {
		return c
	}
	return CategoryCulture
}

// Narrative holds the structured storytelling sections of a stop.
type Narrative struct {
	Hook   string `json:"hook,omitempty"`
	Story  string `json:"story,omitempty"`
	Secret string `json:"secret,omitempty"`
}

// PhotoSpot is an optional hint for taking a picture at a stop.
type PhotoSpot struct {
	Angle    string `json:"angle,omitempty"`
	BestTime string `json:"best_time,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// Stop is a single point of interest within a tour.
type Stop struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Narrative   Narrative  `json:"narrative"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Category    Category   `json:"category"`
	Visited     bool       `json:"visited"`
	PhotoSpot   *PhotoSpot `json:"photo_spot,omitempty"`
}

// HasCoordinates reports whether the stop carries a usable lat/lng pair.
// The zero pair is treated as unset.
func (s Stop) HasCoordinates() bool {
	if s.Latitude == 0 && s.Longitude == 0 {
		return false
	}
	return s.Latitude >= -90 && s.Latitude <= 90 && s.Longitude >= -180 && s.Longitude <= 180
}

// Tour is an ordered walking itinerary. Stop order is route order.
type Tour struct {
	ID          string  `json:"id"`
	City        string  `json:"city"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    string  `json:"duration"`
	DistanceKM  float64 `json:"distance_km"`
	Difficulty  string  `json:"difficulty"`
	Theme       string  `json:"theme"`
	Stops       []Stop  `json:"stops"`
}
