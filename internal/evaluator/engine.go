package evaluator

import (
	"time"

	"PulseBeacon/internal/model"
)

// Pass is the output of one aggregate evaluation over a catalogue.
type Pass struct {
	Achievements  []model.Achievement
	NewlyUnlocked []model.Achievement
}

// Transitioned reports whether any achievement unlocked during the pass.
func (p *Pass) Transitioned() bool {
	return len(p.NewlyUnlocked) > 0
}

// Changed reports whether any persisted field differs from prev.
func (p *Pass) Changed(prev []model.Achievement) bool {
	if len(prev) != len(p.Achievements) {
		return true
	}
	for i := range prev {
		if !prev[i].Record().Equal(p.Achievements[i].Record()) {
			return true
		}
	}
	return false
}

// Records returns the persisted projection of every achievement.
func (p *Pass) Records() []model.AchievementRecord {
	out := make([]model.AchievementRecord, len(p.Achievements))
	for i := range p.Achievements {
		out[i] = p.Achievements[i].Record()
	}
	return out
}

// Run evaluates every locked achievement in catalogue against readings.
// Unlocked achievements are copied through untouched, so running a fully
// processed catalogue again is a no-op. catalogue is not modified.
func Run(catalogue []model.Achievement, beacon *model.Beacon, readings []model.Reading, now time.Time) *Pass {
	pass := &Pass{Achievements: make([]model.Achievement, len(catalogue))}
	copy(pass.Achievements, catalogue)

	for i := range pass.Achievements {
		a := &pass.Achievements[i]
		if a.IsUnlocked {
			continue
		}

		res := Evaluate(a.Requirement, beacon, readings, now)
		if res.Unlocked {
			at := now
			a.IsUnlocked = true
			a.UnlockedAt = &at
			a.Progress = 1.0
			pass.NewlyUnlocked = append(pass.NewlyUnlocked, *a)
			continue
		}
		a.Progress = res.Progress
	}
	return pass
}
