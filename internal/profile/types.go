package profile

import "time"

// Rank is the gamification tier derived from mileage.
type Rank string

const (
	RankZero   Rank = "ZERO"
	RankScout  Rank = "SCOUT"
	RankRover  Rank = "ROVER"
	RankTitan  Rank = "TITAN"
	RankZenith Rank = "ZENITH"
)

// Stamp is a passport stamp collected when a tour is completed.
type Stamp struct {
	City    string    `json:"city"`
	Country string    `json:"country"`
	Date    time.Time `json:"date"`
	Color   string    `json:"color"`
}

// Badge is a non-revocable achievement.
type Badge struct {
	ID       string     `json:"id"`
	Category string     `json:"category"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

// Stats holds aggregate usage counters.
type Stats struct {
	PhotosTaken     int `json:"photos_taken"`
	GuidesBought    int `json:"guides_bought"`
	SessionsStarted int `json:"sessions_started"`
	Referrals       int `json:"referrals"`
	StreakDays      int `json:"streak_days"`
}

// UserProfile is the full profile snapshot mirrored to the remote store.
// Rank is derived from Miles and is overwritten on every reconcile.
type UserProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Language    string `json:"language,omitempty"`

	Miles int  `json:"miles"`
	Rank  Rank `json:"rank"`

	CulturePoints      int `json:"culture_points"`
	FoodPoints         int `json:"food_points"`
	PhotoPoints        int `json:"photo_points"`
	HistoryPoints      int `json:"history_points"`
	NaturePoints       int `json:"nature_points"`
	ArtPoints          int `json:"art_points"`
	ArchitecturePoints int `json:"architecture_points"`

	Interests      []string `json:"interests"`
	VisitedCities  []string `json:"visited_cities"`
	CompletedTours []string `json:"completed_tours"`
	Stamps         []Stamp  `json:"stamps"`
	Badges         []Badge  `json:"badges"`
	Stats          Stats    `json:"stats"`

	UpdatedAt time.Time `json:"updated_at"`
}
