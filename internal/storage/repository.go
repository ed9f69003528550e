package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/citywalk/internal/profile"
)

// ErrProfileNotFound is returned by DeleteProfile when no row matches.
var ErrProfileNotFound = errors.New("profile not found")

const maxLeaderboard = 100

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository is the remote profile mirror.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// LeaderboardEntry is one row of the mileage ranking.
type LeaderboardEntry struct {
	Email       string       `json:"email"`
	DisplayName string       `json:"display_name"`
	Miles       int          `json:"miles"`
	Rank        profile.Rank `json:"rank"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetProfile retrieves the mirrored profile for email.
// Returns nil, nil when the profile is not found.
func (r *Repository) GetProfile(ctx context.Context, email string) (*profile.UserProfile, error) {
	const q = `
		SELECT data, updated_at
		FROM profiles
		WHERE email = $1
	`

	var dataJSON []byte
	var updatedAt time.Time

	err := r.q.QueryRow(ctx, q, normalizeEmail(email)).Scan(&dataJSON, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying profile %s: %w", email, err)
	}

	var p profile.UserProfile
	if err := json.Unmarshal(dataJSON, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling profile %s: %w", email, err)
	}
	p.UpdatedAt = updatedAt
	return &p, nil
}

// UpsertProfile inserts or replaces the mirrored profile. The last write wins.
func (r *Repository) UpsertProfile(ctx context.Context, p profile.UserProfile) error {
	email := normalizeEmail(p.Email)
	if email == "" {
		return profile.ErrMissingEmail
	}

	dataJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling profile %s: %w", email, err)
	}

	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO profiles (email, display_name, miles, rank, data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    miles        = EXCLUDED.miles,
		    rank         = EXCLUDED.rank,
		    data         = EXCLUDED.data,
		    updated_at   = EXCLUDED.updated_at
	`

	if _, err := r.q.Exec(ctx, q, email, p.DisplayName, p.Miles, string(p.Rank), dataJSON, updatedAt); err != nil {
		return fmt.Errorf("upserting profile %s: %w", email, err)
	}
	return nil
}

// DeleteProfile removes the mirrored profile for email.
func (r *Repository) DeleteProfile(ctx context.Context, email string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM profiles WHERE email = $1`, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("deleting profile %s: %w", email, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Leaderboard returns profiles ordered by miles. When badgeID is set only
// profiles holding that badge are returned, using the JSONB @> containment
// operator.
func (r *Repository) Leaderboard(ctx context.Context, badgeID string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > maxLeaderboard {
		limit = maxLeaderboard
	}

	q := `
		SELECT email, display_name, miles, rank, updated_at
		FROM profiles
		ORDER BY miles DESC, email
		LIMIT $1
	`
	args := []any{limit}

	if badgeID != "" {
		filter, err := json.Marshal(map[string]any{
			"badges": []map[string]string{{"id": badgeID}},
		})
		if err != nil {
			return nil, fmt.Errorf("marshaling JSONB filter: %w", err)
		}
		q = `
		SELECT email, display_name, miles, rank, updated_at
		FROM profiles
		WHERE data @> $2::jsonb
		ORDER BY miles DESC, email
		LIMIT $1
	`
		args = append(args, string(filter))
	}

	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var results []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		var rank string
		if err := rows.Scan(&e.Email, &e.DisplayName, &e.Miles, &rank, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		e.Rank = profile.Rank(rank)
		results = append(results, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leaderboard rows: %w", err)
	}
	return results, nil
}
