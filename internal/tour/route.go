package tour

import (
	"math"

	"github.com/golang/geo/s2"
)

const earthRadiusKM = 6371.01

// RouteDistanceKM sums the great-circle legs between consecutive stops.
// When any stop lacks coordinates, or there are fewer than two stops,
// fallback is returned unchanged.
func RouteDistanceKM(stops []Stop, fallback float64) float64 {
	if len(stops) < 2 {
		return fallback
	}
	for _, s := range stops {
		if !s.HasCoordinates() {
			return fallback
		}
	}

	var total float64
	prev := s2.LatLngFromDegrees(stops[0].Latitude, stops[0].Longitude)
	for _, s := range stops[1:] {
		cur := s2.LatLngFromDegrees(s.Latitude, s.Longitude)
		total += prev.Distance(cur).Radians() * earthRadiusKM
		prev = cur
	}
	return math.Round(total*100) / 100
}
