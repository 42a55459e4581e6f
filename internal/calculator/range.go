package calculator

import (
	"errors"
	"math"
	"time"

	"PulseBeacon/internal/model"
)

// ValueRange scans readings and returns the lowest and highest value.
func ValueRange(readings []model.Reading) (low, high float64, err error) {
	if len(readings) == 0 {
		return 0, 0, errors.New("no readings provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, r := range readings {
		if r.Value > high {
			high = r.Value
		}
		if r.Value < low {
			low = r.Value
		}
	}
	return low, high, nil
}

// InZonePercentage returns the share of readings classified in zone (0 ~ 100).
func InZonePercentage(beacon *model.Beacon, readings []model.Reading) float64 {
	if len(readings) == 0 {
		return 0
	}
	inZone := 0
	for _, r := range readings {
		if beacon.Status(r.Value) == model.StatusInZone {
			inZone++
		}
	}
	return float64(inZone) / float64(len(readings)) * 100
}

// CountSince counts readings taken at or after since.
func CountSince(readings []model.Reading, since time.Time) int {
	n := 0
	for _, r := range readings {
		if !r.Timestamp.Before(since) {
			n++
		}
	}
	return n
}

// SameDay filters readings to the calendar day of at, in at's location.
func SameDay(readings []model.Reading, at time.Time) []model.Reading {
	y, m, d := at.Date()
	var out []model.Reading
	for _, r := range readings {
		ry, rm, rd := r.Timestamp.In(at.Location()).Date()
		if ry == y && rm == m && rd == d {
			out = append(out, r)
		}
	}
	return out
}
