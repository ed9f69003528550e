package profile

import "time"

// Upper mileage bound (inclusive) of each tier below ZENITH.
const (
	zeroMaxMiles  = 250
	scoutMaxMiles = 1200
	roverMaxMiles = 4000
	titanMaxMiles = 10000
)

// ComputeRank maps mileage to its tier.
func ComputeRank(miles int) Rank {
	switch {
	case miles <= zeroMaxMiles:
		return RankZero
	case miles <= scoutMaxMiles:
		return RankScout
	case miles <= roverMaxMiles:
		return RankRover
	case miles <= titanMaxMiles:
		return RankTitan
	default:
		return RankZenith
	}
}

const (
	categoryBadgeThreshold = 5
	streakBadgeDays        = 7
)

type badgeRule struct {
	id       string
	category string
	earned   func(p *UserProfile) bool
}

func pointsAtLeast(points func(p *UserProfile) int) func(p *UserProfile) bool {
	return func(p *UserProfile) bool { return points(p) >= categoryBadgeThreshold }
}

func rankAtLeast(r Rank) func(p *UserProfile) bool {
	return func(p *UserProfile) bool { return rankOrder[ComputeRank(p.Miles)] >= rankOrder[r] }
}

var rankOrder = map[Rank]int{RankZero: 0, RankScout: 1, RankRover: 2, RankTitan: 3, RankZenith: 4}

var badgeRules = []badgeRule{
	{"primer_paso", "activity", func(p *UserProfile) bool { return len(p.CompletedTours) > 0 || p.Miles > 0 }},
	{"racha_7", "streak", func(p *UserProfile) bool { return p.Stats.StreakDays >= streakBadgeDays }},
	{"culto", "culture", pointsAtLeast(func(p *UserProfile) int { return p.CulturePoints })},
	{"gourmet", "food", pointsAtLeast(func(p *UserProfile) int { return p.FoodPoints })},
	{"fotografo", "photo", pointsAtLeast(func(p *UserProfile) int { return p.PhotoPoints })},
	{"historiador", "history", pointsAtLeast(func(p *UserProfile) int { return p.HistoryPoints })},
	{"naturalista", "nature", pointsAtLeast(func(p *UserProfile) int { return p.NaturePoints })},
	{"artista", "art", pointsAtLeast(func(p *UserProfile) int { return p.ArtPoints })},
	{"arquitecto", "architecture", pointsAtLeast(func(p *UserProfile) int { return p.ArchitecturePoints })},
	{"rank_scout", "rank", rankAtLeast(RankScout)},
	{"rank_rover", "rank", rankAtLeast(RankRover)},
	{"rank_titan", "rank", rankAtLeast(RankTitan)},
	{"rank_zenith", "rank", rankAtLeast(RankZenith)},
}

var ruleCategory = func() map[string]string {
	m := make(map[string]string, len(badgeRules))
	for _, r := range badgeRules {
		m[r.id] = r.category
	}
	return m
}()

// ComputeBadges returns p's existing badges plus every newly qualifying one,
// stamped with now. Existing badges are kept untouched and never removed.
func ComputeBadges(p UserProfile, now time.Time) []Badge {
	out := make([]Badge, 0, len(p.Badges)+len(badgeRules))
	have := make(map[string]bool, len(p.Badges))
	for _, b := range p.Badges {
		if have[b.ID] {
			continue
		}
		have[b.ID] = true
		if c, ok := ruleCategory[b.ID]; ok {
			b.Category = c
		}
		out = append(out, b)
	}

	for _, rule := range badgeRules {
		if have[rule.id] || !rule.earned(&p) {
			continue
		}
		earned := now
		out = append(out, Badge{ID: rule.id, Category: rule.category, EarnedAt: &earned})
		have[rule.id] = true
	}
	return out
}

// Recompute overwrites the derived fields of p: rank from mileage, and the
// badge set.
func Recompute(p UserProfile, now time.Time) UserProfile {
	p.Rank = ComputeRank(p.Miles)
	p.Badges = ComputeBadges(p, now)
	return p
}
