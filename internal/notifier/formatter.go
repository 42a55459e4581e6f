package notifier

import (
	"fmt"
	"strings"
	"time"

	"PulseBeacon/internal/calculator"
	"PulseBeacon/internal/catalog"
	"PulseBeacon/internal/model"
)

// FormatAchievementUnlocked announces a newly unlocked achievement.
func FormatAchievementUnlocked(a *model.Achievement) string {
	return fmt.Sprintf("🏆 Achievement unlocked: %s\n   %s", a.Title, a.Description)
}

// FormatLevelUp announces a new level.
func FormatLevelUp(level int) string {
	return fmt.Sprintf("⬆️ Level up! You reached level %d", level)
}

// FormatChallengeCompleted announces a finished daily challenge.
func FormatChallengeCompleted(c *model.DailyChallenge) string {
	return fmt.Sprintf("✅ Challenge complete: %s (+%d XP)", c.Title, c.XPReward)
}

// FormatBadgeUnlocked announces a badge.
func FormatBadgeUnlocked(b *model.Badge) string {
	return fmt.Sprintf("🎖 Badge unlocked: %s [%s]\n   %s", b.Name, b.Rarity, b.Description)
}

// FormatCritical warns about a reading at or above the critical threshold.
func FormatCritical(b *model.Beacon, value float64) string {
	return fmt.Sprintf("🚨 %s critical: %.1f (threshold %.1f)", b.Name, value, *b.CriticalThreshold)
}

// FormatZoneIndicator renders "min ← [value] → max".
func FormatZoneIndicator(b *model.Beacon, value *float64) string {
	if value == nil {
		return fmt.Sprintf("%.0f ← [ ] → %.0f", b.MinValue, b.MaxValue)
	}
	return fmt.Sprintf("%.0f ← [%.0f] → %.0f", b.MinValue, *value, b.MaxValue)
}

// FormatBeacon renders a one-line beacon description.
func FormatBeacon(b *model.Beacon) string {
	line := fmt.Sprintf("%s  %-20s %-18s zone %.1f–%.1f", b.ID, b.Name, b.MetricName, b.MinValue, b.MaxValue)
	if b.CriticalThreshold != nil {
		line += fmt.Sprintf("  critical ≥ %.1f", *b.CriticalThreshold)
	}
	return line
}

// FormatStatistics formats a beacon statistics summary.
func FormatStatistics(b *model.Beacon, st *calculator.Statistics, at time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 %s | %s\n\n", b.Name, at.Format("2006-01-02")))
	if st.Count == 0 {
		sb.WriteString("No readings yet\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("Readings: %d (24h: %d, 7d: %d)\n", st.Count, st.Last24h, st.Last7d))
	sb.WriteString(fmt.Sprintf("Average: %.1f\n", st.Average))
	sb.WriteString(fmt.Sprintf("Min / Max: %.1f / %.1f\n", st.Min, st.Max))
	sb.WriteString(fmt.Sprintf("In zone: %.0f%%\n", st.InZonePercentage))
	sb.WriteString(fmt.Sprintf("Trend: %s\n", strings.ToLower(string(st.Trend))))
	return sb.String()
}

// FormatAchievements lists achievements with their progress.
func FormatAchievements(achievements []model.Achievement) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 Achievements %d/%d\n\n", catalog.UnlockedCount(achievements), len(achievements)))
	for _, a := range achievements {
		mark := "  "
		if a.IsUnlocked {
			mark = "✔ "
		}
		sb.WriteString(fmt.Sprintf("%s%-16s %3.0f%%  %s\n", mark, a.Title, a.Progress*100, a.Requirement))
	}
	return sb.String()
}

// FormatProgress formats level, challenges and badges.
func FormatProgress(s *model.GameState) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⭐ Level %d | %d XP (%d to next, %.0f%%)\n",
		s.Level.CurrentLevel, s.Level.TotalXP, s.Level.XPToNextLevel(), s.Level.ProgressToNextLevel()*100))

	sb.WriteString(fmt.Sprintf("\n📅 Daily challenges (%s)\n", s.ChallengesDay))
	for _, c := range s.Challenges {
		mark := "  "
		if c.IsCompleted {
			mark = "✔ "
		}
		sb.WriteString(fmt.Sprintf("%s%-18s %d/%d  +%d XP\n", mark, c.Title, c.CurrentValue, c.TargetValue, c.XPReward))
	}

	sb.WriteString("\n🎖 Badges\n")
	for _, b := range s.Badges {
		mark := "  "
		if b.IsUnlocked {
			mark = "✔ "
		}
		sb.WriteString(fmt.Sprintf("%s%-14s %s\n", mark, b.Name, b.Rarity))
	}
	return sb.String()
}
