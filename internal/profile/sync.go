package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrMissingEmail is reported when a profile has no email to key it by.
var ErrMissingEmail = errors.New("profile email is required")

// RemoteStore is the remote profile mirror. GetProfile returns nil, nil when
// the profile does not exist.
type RemoteStore interface {
	GetProfile(ctx context.Context, email string) (*UserProfile, error)
	UpsertProfile(ctx context.Context, p UserProfile) error
}

// LocalStore persists the local profile snapshot.
type LocalStore interface {
	Load(email string) (*UserProfile, error)
	Save(p UserProfile) error
}

// SyncObserver receives the outcome of every reconcile.
type SyncObserver interface {
	ProfileSynced(outcome string)
}

// SyncResult is the outcome of Reconcile. Profile is always the reconciled
// local state, whether or not the remote write succeeded.
type SyncResult struct {
	Profile UserProfile `json:"profile"`
	Synced  bool        `json:"synced"`
	Err     error       `json:"-"`
}

// Syncer owns profile writes: derived fields are recomputed, the local
// snapshot is saved, then the remote mirror is upserted.
type Syncer struct {
	remote   RemoteStore
	local    LocalStore
	observer SyncObserver
	now      func() time.Time
	log      *slog.Logger
}

// NewSyncer constructs a Syncer. observer may be nil.
func NewSyncer(remote RemoteStore, local LocalStore, observer SyncObserver, log *slog.Logger) *Syncer {
	return &Syncer{remote: remote, local: local, observer: observer, now: time.Now, log: log}
}

// WithClock replaces the time source. Intended for tests.
func (s *Syncer) WithClock(now func() time.Time) *Syncer {
	s.now = now
	return s
}

// Reconcile recomputes rank and badges for local and writes the result
// locally and remotely. Failures are logged and reported in the result;
// they are never returned as errors.
func (s *Syncer) Reconcile(ctx context.Context, local UserProfile) SyncResult {
	now := s.now()
	p := Recompute(local, now)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.UpdatedAt = now.UTC()

	if p.Email == "" {
		s.observe("invalid")
		return SyncResult{Profile: p, Err: ErrMissingEmail}
	}

	if err := s.local.Save(p); err != nil {
		s.log.Warn("profile snapshot save failed", "email", p.Email, "err", err)
	}

	if err := s.remote.UpsertProfile(context.WithoutCancel(ctx), p); err != nil {
		s.log.Warn("profile sync failed", "email", p.Email, "err", err)
		s.observe("error")
		return SyncResult{Profile: p, Err: fmt.Errorf("syncing profile %s: %w", p.Email, err)}
	}

	s.observe("ok")
	return SyncResult{Profile: p, Synced: true}
}

// Load returns the remote profile for email, falling back to the local
// snapshot when the remote store fails or has no row. It returns nil, nil
// only when the remote store cleanly reports no row and there is no
// snapshot; a failed remote read with no snapshot is an error.
func (s *Syncer) Load(ctx context.Context, email string) (*UserProfile, error) {
	remote, err := s.remote.GetProfile(ctx, email)
	if err == nil && remote != nil {
		return remote, nil
	}
	if err != nil {
		s.log.Warn("remote profile read failed, using snapshot", "email", email, "err", err)
	}

	local, lerr := s.local.Load(email)
	if lerr != nil {
		if err != nil {
			return nil, errors.Join(err, lerr)
		}
		return nil, lerr
	}
	if local == nil && err != nil {
		return nil, fmt.Errorf("reading remote profile %s: %w", email, err)
	}
	return local, nil
}

// Update loads the current profile for email (or starts a fresh one),
// applies fn and reconciles the result.
func (s *Syncer) Update(ctx context.Context, email string, fn func(UserProfile) UserProfile) (SyncResult, error) {
	current, err := s.Load(ctx, email)
	if err != nil {
		return SyncResult{}, fmt.Errorf("loading profile %s: %w", email, err)
	}

	p := UserProfile{Email: email}
	if current != nil {
		p = *current
	}
	return s.Reconcile(ctx, fn(p)), nil
}

func (s *Syncer) observe(outcome string) {
	if s.observer != nil {
		s.observer.ProfileSynced(outcome)
	}
}
