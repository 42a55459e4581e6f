package calculator

import (
	"time"

	"PulseBeacon/internal/model"
)

// Trend compares recent readings with the oldest ones.
type Trend string

const (
	TrendImproving Trend = "IMPROVING"
	TrendStable    Trend = "STABLE"
	TrendWorsening Trend = "WORSENING"
)

// trendWindow is how many readings each side of the trend comparison uses.
const trendWindow = 10

// Statistics summarises a beacon's reading history.
type Statistics struct {
	Count            int
	Average          float64
	InZonePercentage float64 // 0 ~ 100
	Min              float64
	Max              float64
	Trend            Trend
	Last24h          int
	Last7d           int
}

// Compute builds Statistics for readings (ascending). An empty history yields
// zero values and a stable trend.
func Compute(beacon *model.Beacon, readings []model.Reading, now time.Time) *Statistics {
	st := &Statistics{Count: len(readings), Trend: TrendStable}
	if len(readings) == 0 {
		return st
	}

	values := extractValues(readings)
	if avg, err := Mean(values); err == nil {
		st.Average = avg
	}
	if low, high, err := ValueRange(readings); err == nil {
		st.Min, st.Max = low, high
	}

	st.InZonePercentage = InZonePercentage(beacon, readings)
	st.Trend = CalculateTrend(beacon, values)
	st.Last24h = CountSince(readings, now.Add(-24*time.Hour))
	st.Last7d = CountSince(readings, now.Add(-7*24*time.Hour))
	return st
}

// CalculateTrend compares the mean of the last 10 values with the mean of the
// first (up to) 10 values not in that window. A difference larger than 10% of
// the beacon's range counts as a trend.
func CalculateTrend(beacon *model.Beacon, values []float64) Trend {
	if len(values) < 2 {
		return TrendStable
	}
	recentCount := min(trendWindow, len(values))
	olderCount := min(trendWindow, len(values)-recentCount)
	if olderCount == 0 {
		return TrendStable
	}

	recentAvg, err := TrailingMean(values, recentCount)
	if err != nil {
		return TrendStable
	}
	olderAvg, err := Mean(values[:olderCount])
	if err != nil {
		return TrendStable
	}

	diff := recentAvg - olderAvg
	threshold := (beacon.MaxValue - beacon.MinValue) * 0.1
	switch {
	case diff > threshold:
		return TrendImproving
	case diff < -threshold:
		return TrendWorsening
	default:
		return TrendStable
	}
}
