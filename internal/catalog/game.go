package catalog

import "PulseBeacon/internal/model"

// Badge ids, also used by the game manager's unlock rules.
const (
	BadgeFirstSteps  = "first_steps"
	BadgeWeekWarrior = "week_warrior"
	BadgeLevel10     = "level_10"
	BadgePerfectWeek = "perfect_week"
)

// DefaultChallenges returns the challenges generated each day.
func DefaultChallenges() []model.DailyChallenge {
	return []model.DailyChallenge{
		{ID: "record_readings", Kind: model.ChallengeReadingCount, Title: "Record 5 Readings", Description: "Make 5 measurements today", TargetValue: 5, XPReward: 50, Icon: "target"},
		{ID: "stay_in_zone", Kind: model.ChallengeZonePercentage, Title: "Stay in Zone", Description: "Keep 80% readings in zone", TargetValue: 80, XPReward: 75, Icon: "checkmark.circle.fill"},
		{ID: "early_bird", Kind: model.ChallengeEarlyBird, Title: "Early Bird", Description: "Record before 9 AM", TargetValue: 1, XPReward: 30, Icon: "sunrise.fill"},
	}
}

// DefaultBadges returns the badge set, all locked.
func DefaultBadges() []model.Badge {
	return []model.Badge{
		{ID: BadgeFirstSteps, Name: "First Steps", Description: "Complete your first challenge", Icon: "star.fill", Rarity: model.RarityCommon},
		{ID: BadgeWeekWarrior, Name: "Week Warrior", Description: "Complete 7 daily challenges", Icon: "flame.fill", Rarity: model.RarityRare},
		{ID: BadgeLevel10, Name: "Level 10", Description: "Reach level 10", Icon: "10.circle.fill", Rarity: model.RarityEpic},
		{ID: BadgePerfectWeek, Name: "Perfect Week", Description: "Complete all challenges for a week", Icon: "crown.fill", Rarity: model.RarityLegendary},
	}
}
