package model

import (
	"fmt"
	"time"
)

// RequirementKind tags the Requirement variant.
type RequirementKind string

const (
	KindTotalReadings    RequirementKind = "totalReadings"
	KindInZonePercentage RequirementKind = "inZonePercentage"
	KindConsecutiveDays  RequirementKind = "consecutiveDays"
	KindPerfectDay       RequirementKind = "perfectDay"
	KindMilestone        RequirementKind = "milestone"
	KindStreak           RequirementKind = "streak"
)

// Requirement defines when an achievement unlocks. Only the field matching
// Kind is meaningful:
//
//	totalReadings    -> Count
//	inZonePercentage -> Percentage
//	consecutiveDays  -> Days
//	perfectDay       -> (none)
//	milestone        -> Value
//	streak           -> Days
type Requirement struct {
	Kind       RequirementKind `yaml:"kind" json:"kind"`
	Count      int             `yaml:"count,omitempty" json:"count,omitempty"`
	Percentage float64         `yaml:"percentage,omitempty" json:"percentage,omitempty"`
	Days       int             `yaml:"days,omitempty" json:"days,omitempty"`
	Value      float64         `yaml:"value,omitempty" json:"value,omitempty"`
}

func TotalReadings(count int) Requirement {
	return Requirement{Kind: KindTotalReadings, Count: count}
}

func InZonePercentage(percentage float64) Requirement {
	return Requirement{Kind: KindInZonePercentage, Percentage: percentage}
}

func ConsecutiveDays(days int) Requirement {
	return Requirement{Kind: KindConsecutiveDays, Days: days}
}

func PerfectDay() Requirement {
	return Requirement{Kind: KindPerfectDay}
}

func Milestone(value float64) Requirement {
	return Requirement{Kind: KindMilestone, Value: value}
}

func Streak(days int) Requirement {
	return Requirement{Kind: KindStreak, Days: days}
}

// Validate rejects unknown kinds.
func (r Requirement) Validate() error {
	switch r.Kind {
	case KindTotalReadings, KindInZonePercentage, KindConsecutiveDays,
		KindPerfectDay, KindMilestone, KindStreak:
		return nil
	default:
		return fmt.Errorf("%w: unknown requirement kind %q", ErrValidation, r.Kind)
	}
}

// String renders the requirement for reports.
func (r Requirement) String() string {
	switch r.Kind {
	case KindTotalReadings:
		return fmt.Sprintf("%d readings", r.Count)
	case KindInZonePercentage:
		return fmt.Sprintf("%.0f%% in zone", r.Percentage)
	case KindConsecutiveDays:
		return fmt.Sprintf("%d consecutive days", r.Days)
	case KindPerfectDay:
		return "perfect day"
	case KindMilestone:
		return fmt.Sprintf("reach %.1f", r.Value)
	case KindStreak:
		return fmt.Sprintf("%d day streak", r.Days)
	default:
		return string(r.Kind)
	}
}

// Achievement pairs immutable catalogue metadata with mutable unlock state.
type Achievement struct {
	ID          string      `yaml:"id" json:"id"`
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description" json:"description"`
	Icon        string      `yaml:"icon" json:"icon"`
	Color       string      `yaml:"color" json:"color"`
	Requirement Requirement `yaml:"requirement" json:"requirement"`

	IsUnlocked bool       `yaml:"-" json:"is_unlocked"`
	UnlockedAt *time.Time `yaml:"-" json:"unlocked_at,omitempty"`
	Progress   float64    `yaml:"-" json:"progress"` // 0.0 ~ 1.0
}

// AchievementRecord is the persisted part of an achievement.
type AchievementRecord struct {
	ID         string
	IsUnlocked bool
	UnlockedAt *time.Time
	Progress   float64
}

// Record projects the persisted state.
func (a *Achievement) Record() AchievementRecord {
	return AchievementRecord{
		ID:         a.ID,
		IsUnlocked: a.IsUnlocked,
		UnlockedAt: a.UnlockedAt,
		Progress:   a.Progress,
	}
}

// Equal reports whether two records would persist identically.
func (r AchievementRecord) Equal(o AchievementRecord) bool {
	if r.ID != o.ID || r.IsUnlocked != o.IsUnlocked || r.Progress != o.Progress {
		return false
	}
	if r.UnlockedAt == nil || o.UnlockedAt == nil {
		return r.UnlockedAt == nil && o.UnlockedAt == nil
	}
	return r.UnlockedAt.Equal(*o.UnlockedAt)
}
