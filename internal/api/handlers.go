package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/neexbeast/citywalk/internal/audio"
	"github.com/neexbeast/citywalk/internal/blob"
	"github.com/neexbeast/citywalk/internal/profile"
	"github.com/neexbeast/citywalk/internal/storage"
	"github.com/neexbeast/citywalk/internal/tour"
)

const (
	defaultLanguage = "es"
	maxBodyBytes    = 1 << 20
	maxNarration    = 5000
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	tours     TourResolver
	narrator  Narrator
	payloads  AudioPayloads
	profiles  ProfileSyncer
	directory ProfileDirectory
	now       func() time.Time
	log       *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(tours TourResolver, narrator Narrator, payloads AudioPayloads, profiles ProfileSyncer, directory ProfileDirectory, log *slog.Logger) *Handlers {
	return &Handlers{
		tours:     tours,
		narrator:  narrator,
		payloads:  payloads,
		profiles:  profiles,
		directory: directory,
		now:       time.Now,
		log:       log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func language(raw string) string {
	if lang := strings.TrimSpace(raw); lang != "" {
		return lang
	}
	return defaultLanguage
}

type toursResponse struct {
	Stage tour.Stage  `json:"stage"`
	Tours []tour.Tour `json:"tours"`
}

// GetTours handles GET /api/v1/tours?city=&country=&lang=.
// Always answers with at least one tour once a city is given.
func (h *Handlers) GetTours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	if city == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	res := h.tours.Resolve(r.Context(), city, q.Get("country"), language(q.Get("lang")))
	writeJSON(w, http.StatusOK, toursResponse{Stage: res.Stage, Tours: res.Tours})
}

type narrateRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
	City string `json:"city"`
}

// Narrate handles POST /api/v1/audio.
func (h *Handlers) Narrate(w http.ResponseWriter, r *http.Request) {
	var req narrateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(req.Text) > maxNarration {
		writeError(w, http.StatusRequestEntityTooLarge, "text is too long")
		return
	}

	ref, err := h.narrator.Narrate(r.Context(), req.Text, language(req.Lang), req.City)
	if err != nil {
		if errors.Is(err, audio.ErrSynthesisUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "narration unavailable")
			return
		}
		h.log.Warn("narration failed", "lang", req.Lang, "city", req.City, "err", err)
		writeError(w, http.StatusBadGateway, "narration failed")
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

// GetAudio handles GET /api/v1/audio/{hash}/{lang} and serves the stored
// narration as WAV.
func (h *Handlers) GetAudio(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	lang := chi.URLParam(r, "lang")

	pcm, err := h.payloads.Payload(r.Context(), hash, lang)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			writeError(w, http.StatusNotFound, "audio not found")
			return
		}
		h.log.Error("audio payload read failed", "hash", hash, "lang", lang, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	wav := audio.WAV(pcm)
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}

// GetProfile handles GET /api/v1/profiles/{email}.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	p, err := h.profiles.Load(r.Context(), email)
	if err != nil {
		h.log.Error("profile load failed", "email", email, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PutProfile handles PUT /api/v1/profiles/{email}. The path email wins over
// the body.
func (h *Handlers) PutProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.UserProfile
	if !decodeBody(w, r, &p) {
		return
	}
	p.Email = chi.URLParam(r, "email")
	h.writeSync(w, h.profiles.Reconcile(r.Context(), p))
}

type visitRequest struct {
	Category string `json:"category"`
	Miles    int    `json:"miles"`
}

// RecordVisit handles POST /api/v1/profiles/{email}/visits.
func (h *Handlers) RecordVisit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Miles < 0 {
		writeError(w, http.StatusBadRequest, "miles must not be negative")
		return
	}

	category := tour.CoerceCategory(req.Category)
	h.update(w, r, func(p profile.UserProfile) profile.UserProfile {
		return profile.ApplyVisit(p, category, req.Miles)
	})
}

type completionRequest struct {
	TourID  string `json:"tourId"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// CompleteTour handles POST /api/v1/profiles/{email}/completions.
func (h *Handlers) CompleteTour(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.TourID) == "" || strings.TrimSpace(req.City) == "" {
		writeError(w, http.StatusBadRequest, "tourId and city are required")
		return
	}

	at := h.now()
	h.update(w, r, func(p profile.UserProfile) profile.UserProfile {
		return profile.CompleteTour(p, req.TourID, req.City, req.Country, at)
	})
}

// DeleteProfile handles DELETE /api/v1/profiles/{email}. Only the remote
// mirror is removed.
func (h *Handlers) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := h.directory.DeleteProfile(r.Context(), email); err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.log.Error("profile delete failed", "email", email, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leaderboard handles GET /api/v1/leaderboard?badge=&limit=.
func (h *Handlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.directory.Leaderboard(r.Context(), r.URL.Query().Get("badge"), limit)
	if err != nil {
		h.log.Error("leaderboard query failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if entries == nil {
		entries = []storage.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request, fn func(profile.UserProfile) profile.UserProfile) {
	email := chi.URLParam(r, "email")
	res, err := h.profiles.Update(r.Context(), email, fn)
	if err != nil {
		h.log.Error("profile update failed", "email", email, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeSync(w, res)
}

func (h *Handlers) writeSync(w http.ResponseWriter, res profile.SyncResult) {
	if errors.Is(res.Err, profile.ErrMissingEmail) {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis connectivity.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		overall := "ok"
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
