package evaluator

import (
	"sort"
	"time"

	"PulseBeacon/internal/model"
)

// dayNumber maps t to a civil day index in loc. Differences between two
// indices are whole calendar days regardless of DST.
func dayNumber(t time.Time, loc *time.Location) int64 {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// distinctDays returns the calendar days covered by readings, ascending.
func distinctDays(readings []model.Reading, loc *time.Location) []int64 {
	seen := make(map[int64]struct{}, len(readings))
	days := make([]int64, 0, len(readings))
	for _, r := range readings {
		d := dayNumber(r.Timestamp, loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// longestRun returns the longest run of back-to-back days in an ascending list.
func longestRun(days []int64) int {
	if len(days) == 0 {
		return 0
	}
	run, best := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 1
		}
	}
	return best
}

// streakLength walks days from most recent backwards starting at today. A day
// counts when it is the cursor day or the day before it; only the latter moves
// the cursor. Anything else stops the walk.
func streakLength(days []int64, today int64) int {
	cursor := today
	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		day := days[i]
		switch day {
		case cursor:
			streak++
		case cursor - 1:
			cursor = day
			streak++
		default:
			return streak
		}
	}
	return streak
}
