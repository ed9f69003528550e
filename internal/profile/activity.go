package profile

import (
	"hash/fnv"
	"slices"
	"strings"
	"time"

	"github.com/neexbeast/citywalk/internal/tour"
)

var stampColors = []string{"#E4572E", "#17BEBB", "#FFC914", "#2E282A", "#76B041", "#6C4AB6", "#F08CAE"}

// ApplyVisit credits a stop visit: miles are added and the counter matching
// the stop category gains one point.
func ApplyVisit(p UserProfile, category tour.Category, miles int) UserProfile {
	if miles > 0 {
		p.Miles += miles
	}
	switch tour.CoerceCategory(string(category)) {
	case tour.CategoryHistorical:
		p.HistoryPoints++
	case tour.CategoryFood:
		p.FoodPoints++
	case tour.CategoryArt:
		p.ArtPoints++
	case tour.CategoryNature:
		p.NaturePoints++
	case tour.CategoryPhoto:
		p.PhotoPoints++
	case tour.CategoryArchitecture:
		p.ArchitecturePoints++
	default:
		p.CulturePoints++
	}
	return p
}

// CompleteTour records a finished tour, the visited city and a stamp.
// Completing the same tour twice is a no-op.
func CompleteTour(p UserProfile, tourID, city, country string, at time.Time) UserProfile {
	if tourID == "" || slices.Contains(p.CompletedTours, tourID) {
		return p
	}
	p.CompletedTours = append(slices.Clone(p.CompletedTours), tourID)

	city = strings.TrimSpace(city)
	if city == "" {
		return p
	}
	if !slices.Contains(p.VisitedCities, city) {
		p.VisitedCities = append(slices.Clone(p.VisitedCities), city)
	}
	p.Stamps = append(slices.Clone(p.Stamps), Stamp{
		City:    city,
		Country: strings.TrimSpace(country),
		Date:    at.UTC(),
		Color:   stampColor(city),
	})
	return p
}

func stampColor(city string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(city)))
	return stampColors[h.Sum32()%uint32(len(stampColors))]
}
