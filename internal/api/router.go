package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// Instrumentation is the metrics surface used by the router.
type Instrumentation interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// NewRouter builds and returns the Chi router with all routes configured.
// Health and audio download are unauthenticated; everything else requires
// bearer auth. Rate limiting is applied globally: 60 requests per minute per IP.
func NewRouter(handlers *Handlers, token string, db dbPinger, redisClient redisPinger, metrics Instrumentation, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	if metrics != nil {
		r.Use(metrics.Middleware)
	}
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", HealthHandlerFunc(db, redisClient, log))
		r.Get("/audio/{hash}/{lang}", handlers.GetAudio)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(token))
			r.Get("/tours", handlers.GetTours)
			r.Post("/audio", handlers.Narrate)

			r.Get("/profiles/{email}", handlers.GetProfile)
			r.Put("/profiles/{email}", handlers.PutProfile)
			r.Delete("/profiles/{email}", handlers.DeleteProfile)
			r.Post("/profiles/{email}/visits", handlers.RecordVisit)
			r.Post("/profiles/{email}/completions", handlers.CompleteTour)
			r.Get("/leaderboard", handlers.Leaderboard)

			if metrics != nil {
				r.Method(http.MethodGet, "/metrics", metrics.Handler())
			}
		})
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
