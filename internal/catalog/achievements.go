package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"PulseBeacon/internal/model"
)

// DefaultAchievements returns a fresh copy of the built-in catalogue.
// IDs are persisted; keep them stable.
func DefaultAchievements() []model.Achievement {
	return []model.Achievement{
		{ID: "first_reading", Title: "First Step", Description: "Record your first reading", Icon: "star.fill", Color: "bronze", Requirement: model.TotalReadings(1)},
		{ID: "ten_readings", Title: "Getting Started", Description: "Record 10 readings", Icon: "star.circle.fill", Color: "silver", Requirement: model.TotalReadings(10)},
		{ID: "fifty_readings", Title: "Dedicated", Description: "Record 50 readings", Icon: "star.circle.fill", Color: "gold", Requirement: model.TotalReadings(50)},
		{ID: "hundred_readings", Title: "Century", Description: "Record 100 readings", Icon: "star.fill", Color: "gold", Requirement: model.TotalReadings(100)},
		{ID: "perfect_zone", Title: "Perfect Zone", Description: "100% readings in zone for a day", Icon: "checkmark.circle.fill", Color: "green", Requirement: model.PerfectDay()},
		{ID: "zone_master", Title: "Zone Master", Description: "90% of readings in zone", Icon: "target", Color: "blue", Requirement: model.InZonePercentage(90)},
		{ID: "week_streak", Title: "Week Warrior", Description: "7 days in a row", Icon: "flame.fill", Color: "red", Requirement: model.Streak(7)},
		{ID: "month_streak", Title: "Month Champion", Description: "30 days in a row", Icon: "flame.fill", Color: "red", Requirement: model.Streak(30)},
	}
}

type achievementFile struct {
	Achievements []model.Achievement `yaml:"achievements"`
}

// LoadAchievements reads a custom catalogue from a YAML file. An empty path
// returns the default catalogue.
func LoadAchievements(path string) ([]model.Achievement, error) {
	if path == "" {
		return DefaultAchievements(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read achievements: %w", err)
	}

	var f achievementFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse achievements: %w", err)
	}
	if len(f.Achievements) == 0 {
		return nil, fmt.Errorf("%w: %s defines no achievements", model.ErrValidation, path)
	}

	seen := make(map[string]struct{}, len(f.Achievements))
	for _, a := range f.Achievements {
		if a.ID == "" {
			return nil, fmt.Errorf("%w: achievement without id", model.ErrValidation)
		}
		if _, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate achievement id %q", model.ErrValidation, a.ID)
		}
		seen[a.ID] = struct{}{}
		if err := a.Requirement.Validate(); err != nil {
			return nil, fmt.Errorf("achievement %q: %w", a.ID, err)
		}
	}
	return f.Achievements, nil
}

// Apply overlays persisted state onto catalogue metadata. Records for ids no
// longer in the catalogue are ignored.
func Apply(catalogue []model.Achievement, records []model.AchievementRecord) []model.Achievement {
	byID := make(map[string]model.AchievementRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	out := make([]model.Achievement, len(catalogue))
	copy(out, catalogue)
	for i := range out {
		r, ok := byID[out[i].ID]
		if !ok {
			continue
		}
		out[i].IsUnlocked = r.IsUnlocked
		out[i].UnlockedAt = r.UnlockedAt
		out[i].Progress = r.Progress
	}
	return out
}

// UnlockedCount counts unlocked achievements.
func UnlockedCount(achievements []model.Achievement) int {
	n := 0
	for _, a := range achievements {
		if a.IsUnlocked {
			n++
		}
	}
	return n
}
