package maps

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/citywalk/internal/tour"
)

const defaultConcurrency = 4

// geocoder is the interface satisfied by Geocoder.
type geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

// Enricher fills in coordinates for stops the generator left unset.
// It implements tour.Locator.
type Enricher struct {
	geo         geocoder
	concurrency int
	log         *slog.Logger
}

// NewEnricher constructs an Enricher over the Google Geocoding API.
func NewEnricher(apiKey string, log *slog.Logger) *Enricher {
	return NewEnricherWithGeocoder(NewGeocoder(apiKey), log)
}

// NewEnricherWithGeocoder constructs an Enricher with an injectable geocoder (used in tests).
func NewEnricherWithGeocoder(g geocoder, log *slog.Logger) *Enricher {
	return &Enricher{geo: g, concurrency: defaultConcurrency, log: log}
}

// Locate geocodes every stop without coordinates, in parallel. Failures are
// non-fatal: the stop keeps unset coordinates and the failure is logged.
// The input slice is not modified.
func (e *Enricher) Locate(ctx context.Context, city string, stops []tour.Stop) []tour.Stop {
	out := make([]tour.Stop, len(stops))
	copy(out, stops)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range out {
		if out[i].HasCoordinates() || out[i].Name == "" {
			continue
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					e.log.Error("geocode panicked", "stop", out[i].Name, "recover", r)
					err = fmt.Errorf("geocode panicked: %v", r)
				}
			}()
			loc, geoErr := e.geo.Geocode(gCtx, out[i].Name+", "+city)
			if geoErr != nil {
				e.log.Warn("geocode failed", "city", city, "stop", out[i].Name, "err", geoErr)
				return nil
			}
			out[i].Latitude = loc.Latitude
			out[i].Longitude = loc.Longitude
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.log.Warn("stop enrichment incomplete", "city", city, "err", err)
	}
	return out
}
