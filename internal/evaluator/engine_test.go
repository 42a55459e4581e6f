package evaluator

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"PulseBeacon/internal/model"
)

var testLoc = time.FixedZone("UTC+3", 3*60*60)

// now is mid-afternoon local time.
var now = time.Date(2026, 3, 10, 15, 0, 0, 0, testLoc)

func zoneBeacon() *model.Beacon {
	return &model.Beacon{MetricName: "Heart Rate", MinValue: 50, MaxValue: 70}
}

func readingsAt(offsetsDays []int, values ...float64) []model.Reading {
	out := make([]model.Reading, 0, len(offsetsDays))
	for i, d := range offsetsDays {
		v := 60.0
		if i < len(values) {
			v = values[i]
		}
		out = append(out, model.Reading{Timestamp: now.AddDate(0, 0, d), Value: v})
	}
	return out
}

func readingsToday(values ...float64) []model.Reading {
	out := make([]model.Reading, 0, len(values))
	for i, v := range values {
		out = append(out, model.Reading{Timestamp: now.Add(-time.Duration(len(values)-i) * time.Minute), Value: v})
	}
	return out
}

func TestEvaluate_TotalReadings(t *testing.T) {
	var readings []model.Reading
	last := -1.0
	for i := 0; i < 12; i++ {
		readings = append(readings, model.Reading{Timestamp: now.Add(time.Duration(i) * time.Minute), Value: 60})
		res := Evaluate(model.TotalReadings(10), zoneBeacon(), readings, now)
		if res.Progress < last {
			t.Fatalf("progress decreased from %.2f to %.2f at %d readings", last, res.Progress, i+1)
		}
		last = res.Progress
		if want := i+1 >= 10; res.Unlocked != want {
			t.Errorf("%d readings: unlocked=%v, want %v", i+1, res.Unlocked, want)
		}
	}
	if last != 1.0 {
		t.Errorf("expected progress capped at 1.0, got %.2f", last)
	}
}

func TestEvaluate_InZonePercentage(t *testing.T) {
	nineOfTen := readingsToday(55, 56, 57, 58, 59, 60, 61, 62, 63, 90)
	if diff := cmp.Diff(Result{Unlocked: true, Progress: 1.0}, Evaluate(model.InZonePercentage(90), zoneBeacon(), nineOfTen, now)); diff != "" {
		t.Errorf("90%% of 10 readings (-want +got):\n%s", diff)
	}

	half := readingsToday(60, 90)
	if diff := cmp.Diff(Result{Unlocked: false, Progress: 0.5}, Evaluate(model.InZonePercentage(100), zoneBeacon(), half, now)); diff != "" {
		t.Errorf("50%% of 100%% target (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(Result{}, Evaluate(model.InZonePercentage(90), zoneBeacon(), nil, now)); diff != "" {
		t.Errorf("empty readings (-want +got):\n%s", diff)
	}
}

func TestEvaluate_InZonePercentageCriticalNotInZone(t *testing.T) {
	critical := 65.0
	b := zoneBeacon()
	b.CriticalThreshold = &critical

	// 68 lies inside [50,70] but above the critical threshold.
	res := Evaluate(model.InZonePercentage(100), b, readingsToday(60, 68), now)
	if res.Unlocked {
		t.Fatal("critical reading must not count as in zone")
	}
	if res.Progress != 0.5 {
		t.Errorf("expected progress 0.5, got %.2f", res.Progress)
	}
}

func TestEvaluate_ConsecutiveDays(t *testing.T) {
	// D, D+1, D+2, D+5, D+6 with two readings on D+1.
	readings := readingsAt([]int{-10, -9, -9, -8, -5, -4})

	tests := []struct {
		days     int
		unlocked bool
		progress float64
	}{
		{1, true, 1.0},
		{3, true, 1.0},
		{4, false, 0.75},
		{6, false, 0.5},
	}
	for _, tt := range tests {
		res := Evaluate(model.ConsecutiveDays(tt.days), zoneBeacon(), readings, now)
		if res.Unlocked != tt.unlocked || res.Progress != tt.progress {
			t.Errorf("consecutiveDays(%d): got (%v, %.2f), want (%v, %.2f)",
				tt.days, res.Unlocked, res.Progress, tt.unlocked, tt.progress)
		}
	}

	if res := Evaluate(model.ConsecutiveDays(3), zoneBeacon(), nil, now); res != (Result{}) {
		t.Errorf("empty readings: got %+v", res)
	}
}

func TestEvaluate_ConsecutiveDaysLocalBoundary(t *testing.T) {
	// 20:59 and 21:01 UTC fall on different local days in UTC+3.
	readings := []model.Reading{
		{Timestamp: time.Date(2026, 3, 5, 20, 59, 0, 0, time.UTC), Value: 60},
		{Timestamp: time.Date(2026, 3, 5, 21, 1, 0, 0, time.UTC), Value: 60},
	}
	res := Evaluate(model.ConsecutiveDays(2), zoneBeacon(), readings, now)
	if !res.Unlocked {
		t.Errorf("expected readings either side of local midnight to span two days, got %+v", res)
	}

	// Same instants seen from UTC are one day.
	utcNow := now.In(time.UTC)
	res = Evaluate(model.ConsecutiveDays(2), zoneBeacon(), readings, utcNow)
	if res.Unlocked || res.Progress != 0.5 {
		t.Errorf("expected a single UTC day, got %+v", res)
	}
}

func TestEvaluate_PerfectDay(t *testing.T) {
	today := readingsToday(50, 55, 60)
	if diff := cmp.Diff(Result{Unlocked: true, Progress: 1.0}, Evaluate(model.PerfectDay(), zoneBeacon(), today, now)); diff != "" {
		t.Errorf("all in zone (-want +got):\n%s", diff)
	}

	withMiss := append(append([]model.Reading(nil), today...), model.Reading{Timestamp: now, Value: 80})
	if diff := cmp.Diff(Result{}, Evaluate(model.PerfectDay(), zoneBeacon(), withMiss, now)); diff != "" {
		t.Errorf("one out of zone (-want +got):\n%s", diff)
	}

	// Yesterday's misses do not matter.
	mixed := append(readingsAt([]int{-1}, 99), today...)
	if res := Evaluate(model.PerfectDay(), zoneBeacon(), mixed, now); !res.Unlocked {
		t.Errorf("expected yesterday to be ignored, got %+v", res)
	}

	if res := Evaluate(model.PerfectDay(), zoneBeacon(), readingsAt([]int{-1}), now); res != (Result{}) {
		t.Errorf("no readings today: got %+v", res)
	}
}

func TestEvaluate_Milestone(t *testing.T) {
	readings := readingsToday(40, 90, 70)
	if diff := cmp.Diff(Result{Unlocked: false, Progress: 0.9}, Evaluate(model.Milestone(100), zoneBeacon(), readings, now)); diff != "" {
		t.Errorf("milestone(100) (-want +got):\n%s", diff)
	}
	if res := Evaluate(model.Milestone(90), zoneBeacon(), readings, now); !res.Unlocked || res.Progress != 1.0 {
		t.Errorf("milestone(90): got %+v", res)
	}
	if res := Evaluate(model.Milestone(100), zoneBeacon(), nil, now); res != (Result{}) {
		t.Errorf("empty readings: got %+v", res)
	}
	if res := Evaluate(model.Milestone(0), zoneBeacon(), readings, now); res != (Result{}) {
		t.Errorf("zero target must be guarded, got %+v", res)
	}
}

func TestEvaluate_Streak(t *testing.T) {
	tests := []struct {
		name    string
		offsets []int
		days    int
		want    Result
	}{
		{"today only, many readings", []int{0, 0, 0}, 3, Result{Progress: 1.0 / 3.0}},
		{"three back-to-back days", []int{-2, -1, 0}, 3, Result{Unlocked: true, Progress: 1.0}},
		{"yesterday anchors without today", []int{-2, -1}, 2, Result{Unlocked: true, Progress: 1.0}},
		{"gap stops the walk", []int{-5, -4, -3, -1, 0}, 4, Result{Progress: 0.5}},
		{"stale history", []int{-3, -2}, 2, Result{}},
		{"future day stops immediately", []int{0, 1}, 1, Result{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(model.Streak(tt.days), zoneBeacon(), readingsAt(tt.offsets), now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("streak(%d) (-want +got):\n%s", tt.days, diff)
			}
		})
	}
}

func TestEvaluate_GuardsZeroDenominators(t *testing.T) {
	readings := readingsToday(60)
	reqs := []model.Requirement{
		model.TotalReadings(0),
		model.InZonePercentage(0),
		model.ConsecutiveDays(0),
		model.Streak(0),
		model.Milestone(-5),
		{Kind: "unknown"},
	}
	for _, req := range reqs {
		if res := Evaluate(req, zoneBeacon(), readings, now); res != (Result{}) {
			t.Errorf("%s: expected (false, 0), got %+v", req.Kind, res)
		}
	}
}

func catalogue() []model.Achievement {
	return []model.Achievement{
		{ID: "first_reading", Requirement: model.TotalReadings(1)},
		{ID: "ten_readings", Requirement: model.TotalReadings(10)},
		{ID: "perfect_zone", Requirement: model.PerfectDay()},
	}
}

func TestRun_UnlocksAndRefreshesProgress(t *testing.T) {
	cat := catalogue()
	pass := Run(cat, zoneBeacon(), readingsToday(55, 60), now)

	if !pass.Transitioned() {
		t.Fatal("expected new unlocks")
	}
	gotIDs := []string{}
	for _, a := range pass.NewlyUnlocked {
		gotIDs = append(gotIDs, a.ID)
	}
	if diff := cmp.Diff([]string{"first_reading", "perfect_zone"}, gotIDs); diff != "" {
		t.Errorf("newly unlocked (-want +got):\n%s", diff)
	}

	first := pass.Achievements[0]
	if !first.IsUnlocked || first.UnlockedAt == nil || !first.UnlockedAt.Equal(now) || first.Progress != 1.0 {
		t.Errorf("unexpected unlocked state: %+v", first)
	}
	if p := pass.Achievements[1].Progress; p != 0.2 {
		t.Errorf("expected ten_readings progress 0.2, got %.2f", p)
	}

	// The input catalogue is left alone.
	if cat[0].IsUnlocked || cat[1].Progress != 0 {
		t.Errorf("catalogue was mutated: %+v", cat)
	}
	if !pass.Changed(cat) {
		t.Error("expected pass to differ from the input catalogue")
	}
}

func TestRun_UnlockIsSticky(t *testing.T) {
	first := Run(catalogue(), zoneBeacon(), readingsToday(55, 60), now)

	// Fewer readings, and none of them in zone.
	later := now.Add(time.Hour)
	second := Run(first.Achievements, zoneBeacon(), []model.Reading{{Timestamp: later, Value: 99}}, later)

	for _, a := range second.Achievements {
		if a.ID == "first_reading" || a.ID == "perfect_zone" {
			if !a.IsUnlocked || a.Progress != 1.0 || !a.UnlockedAt.Equal(now) {
				t.Errorf("%s reverted: %+v", a.ID, a)
			}
		}
	}
	if second.Transitioned() {
		t.Error("expected no new unlocks")
	}
}

func TestRun_Idempotent(t *testing.T) {
	readings := readingsToday(55, 60, 65)
	first := Run(catalogue(), zoneBeacon(), readings, now)
	second := Run(first.Achievements, zoneBeacon(), readings, now)

	if second.Transitioned() {
		t.Error("expected no transitions on re-evaluation")
	}
	if second.Changed(first.Achievements) {
		t.Error("expected re-evaluation to be a no-op")
	}
	if diff := cmp.Diff(first.Records(), second.Records()); diff != "" {
		t.Errorf("records drifted (-first +second):\n%s", diff)
	}
}
