package model

import (
	"math"
	"time"
)

// MaxLevel caps UserLevel.CurrentLevel.
const MaxLevel = 50

// UserLevel tracks XP and the level derived from it.
type UserLevel struct {
	CurrentLevel int `json:"current_level"`
	CurrentXP    int `json:"current_xp"`
	TotalXP      int `json:"total_xp"`
}

// LevelRequirement returns the XP needed to reach level (exponential curve).
func LevelRequirement(level int) int {
	return int(100 * math.Pow(1.5, float64(level-1)))
}

// XPToNextLevel returns the XP still missing for the next level.
func (l UserLevel) XPToNextLevel() int {
	return LevelRequirement(l.CurrentLevel+1) - l.CurrentXP
}

// ProgressToNextLevel returns 0.0 ~ 1.0; always 1.0 at MaxLevel.
func (l UserLevel) ProgressToNextLevel() float64 {
	if l.CurrentLevel >= MaxLevel {
		return 1.0
	}
	cur := LevelRequirement(l.CurrentLevel)
	next := LevelRequirement(l.CurrentLevel + 1)
	p := float64(l.CurrentXP-cur) / float64(next-cur)
	return math.Min(1, math.Max(0, p))
}

// ChallengeKind decides which reading events move a daily challenge.
type ChallengeKind string

const (
	ChallengeReadingCount   ChallengeKind = "READING_COUNT"
	ChallengeZonePercentage ChallengeKind = "ZONE_PERCENTAGE"
	ChallengeEarlyBird      ChallengeKind = "EARLY_BIRD"
)

// DailyChallenge is a per-day goal that pays XP once completed.
type DailyChallenge struct {
	ID           string        `json:"id"`
	Kind         ChallengeKind `json:"kind"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	TargetValue  int           `json:"target_value"`
	CurrentValue int           `json:"current_value"`
	XPReward     int           `json:"xp_reward"`
	Icon         string        `json:"icon"`
	IsCompleted  bool          `json:"is_completed"`
}

// Progress returns min(1, current/target); 0 for a non-positive target.
func (c DailyChallenge) Progress() float64 {
	if c.TargetValue <= 0 {
		return 0
	}
	return math.Min(1, float64(c.CurrentValue)/float64(c.TargetValue))
}

// BadgeRarity grades badges for display.
type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

// Badge is a one-off award unlocked by game progress.
type Badge struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Rarity      BadgeRarity `json:"rarity"`
	IsUnlocked  bool        `json:"is_unlocked"`
	UnlockedAt  *time.Time  `json:"unlocked_at,omitempty"`
}

// GameState is everything the game manager persists.
type GameState struct {
	Level               UserLevel        `json:"level"`
	Challenges          []DailyChallenge `json:"challenges"`
	ChallengesDay       string           `json:"challenges_day"` // 2006-01-02, local
	CompletedChallenges int              `json:"completed_challenges"`
	PerfectDayStreak    int              `json:"perfect_day_streak"`
	Badges              []Badge          `json:"badges"`
	UpdatedAt           time.Time        `json:"updated_at"`
}
