package api

import (
	"context"

	"github.com/neexbeast/citywalk/internal/audio"
	"github.com/neexbeast/citywalk/internal/profile"
	"github.com/neexbeast/citywalk/internal/storage"
	"github.com/neexbeast/citywalk/internal/tour"
)

// TourResolver produces the tours to show for a city.
type TourResolver interface {
	Resolve(ctx context.Context, city, country, lang string) tour.Resolution
}

// Narrator returns a stored narration for a text, synthesizing it if needed.
type Narrator interface {
	Narrate(ctx context.Context, text, lang, cityHint string) (*audio.AssetRef, error)
}

// AudioPayloads serves stored narration audio.
type AudioPayloads interface {
	Payload(ctx context.Context, hash, lang string) ([]byte, error)
}

// ProfileSyncer owns profile reads and writes.
type ProfileSyncer interface {
	Load(ctx context.Context, email string) (*profile.UserProfile, error)
	Reconcile(ctx context.Context, p profile.UserProfile) profile.SyncResult
	Update(ctx context.Context, email string, fn func(profile.UserProfile) profile.UserProfile) (profile.SyncResult, error)
}

// ProfileDirectory defines the remote-only profile queries needed by handlers.
type ProfileDirectory interface {
	Leaderboard(ctx context.Context, badgeID string, limit int) ([]storage.LeaderboardEntry, error)
	DeleteProfile(ctx context.Context, email string) error
}
