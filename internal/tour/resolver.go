package tour

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrGeneratorUnavailable is returned by a Generator that cannot serve
// requests at all, e.g. because no credential is configured. The resolver
// does not retry it.
var ErrGeneratorUnavailable = errors.New("tour generator unavailable")

// Stage names the step of the fallback chain that produced a result.
type Stage string

const (
	StageFixture   Stage = "fixture"
	StageCache     Stage = "cache"
	StageGenerated Stage = "generated"
	StageFallback  Stage = "fallback"
)

// Cache is the tour cache the resolver reads through. Get returns nil, nil
// on a miss.
type Cache interface {
	Get(ctx context.Context, city, country, lang string) ([]Tour, error)
	Put(ctx context.Context, city, country, lang string, tours []Tour) error
}

// Generator produces a raw tour list for a city in the given language.
type Generator interface {
	GenerateTours(ctx context.Context, city, lang string) (string, error)
}

// Locator fills in missing stop coordinates.
type Locator interface {
	Locate(ctx context.Context, city string, stops []Stop) []Stop
}

// Observer receives resolution events, typically for metrics.
type Observer interface {
	TourResolved(stage string)
	GenerationAttempt(outcome string)
}

type nopObserver struct{}

func (nopObserver) TourResolved(string)      {}
func (nopObserver) GenerationAttempt(string) {}

// Resolution is the outcome of Resolve. Tours is never empty.
type Resolution struct {
	Stage Stage  `json:"stage"`
	Tours []Tour `json:"tours"`
}

// RetryPolicy is a fixed-delay retry policy for generation.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy makes three attempts 1.5s apart.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Delay: 1500 * time.Millisecond}

// Resolver runs the fixture, cache, generator and fallback chain.
type Resolver struct {
	cache     Cache
	generator Generator
	locator   Locator
	observer  Observer
	retry     RetryPolicy
	log       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLocator sets the coordinate locator applied to generated tours.
func WithLocator(l Locator) Option { return func(r *Resolver) { r.locator = l } }

// WithObserver sets the event observer.
func WithObserver(o Observer) Option { return func(r *Resolver) { r.observer = o } }

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option { return func(r *Resolver) { r.retry = p } }

// NewResolver constructs a Resolver. generator may be nil, in which case
// every cache miss resolves to the fallback tour.
func NewResolver(cache Cache, generator Generator, log *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		cache:     cache,
		generator: generator,
		observer:  nopObserver{},
		retry:     DefaultRetryPolicy,
		log:       log,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.retry.Attempts < 1 {
		r.retry.Attempts = 1
	}
	return r
}

// Resolve returns the tours for city in lang. It never fails and always
// returns at least one tour.
func (r *Resolver) Resolve(ctx context.Context, city, country, lang string) Resolution {
	res := r.resolve(ctx, city, country, lang)
	r.observer.TourResolved(string(res.Stage))
	return res
}

func (r *Resolver) resolve(ctx context.Context, city, country, lang string) Resolution {
	if tours, ok := MatchFixture(city); ok {
		return Resolution{Stage: StageFixture, Tours: tours}
	}

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, city, country, lang)
		if err != nil {
			r.log.Warn("tour cache lookup failed", "city", city, "lang", lang, "err", err)
		}
		if len(cached) > 0 {
			return Resolution{Stage: StageCache, Tours: cached}
		}
	}

	if tours, ok := r.generate(ctx, city, lang); ok {
		if r.locator != nil {
			for i := range tours {
				tours[i].Stops = r.locator.Locate(ctx, city, tours[i].Stops)
				tours[i].DistanceKM = RouteDistanceKM(tours[i].Stops, tours[i].DistanceKM)
			}
		}
		if r.cache != nil {
			if err := r.cache.Put(context.WithoutCancel(ctx), city, country, lang, tours); err != nil {
				r.log.Warn("tour cache store failed", "city", city, "lang", lang, "err", err)
			}
		}
		return Resolution{Stage: StageGenerated, Tours: tours}
	}

	return Resolution{Stage: StageFallback, Tours: Fallback(city, lang)}
}

// generate calls the generator under the retry policy and decodes the
// response. It reports false when no attempt produced usable tours.
func (r *Resolver) generate(ctx context.Context, city, lang string) ([]Tour, bool) {
	if r.generator == nil {
		return nil, false
	}

	for attempt := 1; attempt <= r.retry.Attempts; attempt++ {
		if attempt > 1 && !sleep(ctx, r.retry.Delay) {
			r.log.Warn("tour generation abandoned", "city", city, "lang", lang, "err", ctx.Err())
			return nil, false
		}

		raw, err := r.generator.GenerateTours(ctx, city, lang)
		if errors.Is(err, ErrGeneratorUnavailable) {
			r.observer.GenerationAttempt("unavailable")
			r.log.Warn("tour generator unavailable", "city", city)
			return nil, false
		}
		if err != nil {
			r.observer.GenerationAttempt("error")
			r.log.Warn("tour generation failed", "city", city, "lang", lang, "attempt", attempt, "err", err)
			continue
		}

		result := Decode(city, raw)
		if !result.OK() {
			r.observer.GenerationAttempt("malformed")
			r.log.Warn("tour generation malformed", "city", city, "lang", lang, "attempt", attempt, "err", result.Err)
			continue
		}

		r.observer.GenerationAttempt("ok")
		return result.Tours, true
	}

	return nil, false
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
