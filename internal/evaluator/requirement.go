package evaluator

import (
	"math"
	"time"

	"PulseBeacon/internal/model"
)

// Result is the outcome of checking one requirement.
type Result struct {
	Unlocked bool
	Progress float64 // 0.0 ~ 1.0
}

var locked = Result{}

// ratio returns num/den clamped to [0, 1]; 0 when den is not positive.
func ratio(num, den float64) float64 {
	if den <= 0 || math.IsNaN(num) {
		return 0
	}
	return math.Min(1, math.Max(0, num/den))
}

// Evaluate checks req against readings (ascending by timestamp). Calendar days,
// including "today", are taken in now's location.
func Evaluate(req model.Requirement, beacon *model.Beacon, readings []model.Reading, now time.Time) Result {
	switch req.Kind {
	case model.KindTotalReadings:
		return totalReadings(req.Count, readings)
	case model.KindInZonePercentage:
		return inZonePercentage(req.Percentage, beacon, readings)
	case model.KindConsecutiveDays:
		return consecutiveDays(req.Days, readings, now.Location())
	case model.KindPerfectDay:
		return perfectDay(beacon, readings, now)
	case model.KindMilestone:
		return milestone(req.Value, readings)
	case model.KindStreak:
		return streak(req.Days, readings, now)
	default:
		return locked
	}
}

func totalReadings(count int, readings []model.Reading) Result {
	if count <= 0 {
		return locked
	}
	n := len(readings)
	return Result{Unlocked: n >= count, Progress: ratio(float64(n), float64(count))}
}

func inZonePercentage(percentage float64, beacon *model.Beacon, readings []model.Reading) Result {
	if len(readings) == 0 || percentage <= 0 {
		return locked
	}
	inZone := 0
	for _, r := range readings {
		if beacon.Status(r.Value) == model.StatusInZone {
			inZone++
		}
	}
	pct := float64(inZone) / float64(len(readings)) * 100
	return Result{Unlocked: pct >= percentage, Progress: ratio(pct, percentage)}
}

func consecutiveDays(days int, readings []model.Reading, loc *time.Location) Result {
	if days <= 0 {
		return locked
	}
	run := longestRun(distinctDays(readings, loc))
	return Result{Unlocked: run >= days, Progress: ratio(float64(run), float64(days))}
}

func perfectDay(beacon *model.Beacon, readings []model.Reading, now time.Time) Result {
	today := dayNumber(now, now.Location())
	seen := false
	for _, r := range readings {
		if dayNumber(r.Timestamp, now.Location()) != today {
			continue
		}
		seen = true
		if beacon.Status(r.Value) != model.StatusInZone {
			return locked
		}
	}
	if !seen {
		return locked
	}
	return Result{Unlocked: true, Progress: 1}
}

func milestone(value float64, readings []model.Reading) Result {
	if len(readings) == 0 || value <= 0 {
		return locked
	}
	max := math.Inf(-1)
	for _, r := range readings {
		if r.Value > max {
			max = r.Value
		}
	}
	return Result{Unlocked: max >= value, Progress: ratio(max, value)}
}

func streak(days int, readings []model.Reading, now time.Time) Result {
	if days <= 0 {
		return locked
	}
	loc := now.Location()
	n := streakLength(distinctDays(readings, loc), dayNumber(now, loc))
	return Result{Unlocked: n >= days, Progress: ratio(float64(n), float64(days))}
}
