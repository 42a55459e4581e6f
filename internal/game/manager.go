package game

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"PulseBeacon/internal/catalog"
	"PulseBeacon/internal/model"
)

const (
	// ReadingXP is awarded for every recorded reading.
	ReadingXP = 5
	// EarlyBirdHour is the local hour before which a reading counts as early.
	EarlyBirdHour = 9
	// PerfectWeekDays is the perfect-challenge-day streak that unlocks the perfect_week badge.
	PerfectWeekDays = 7

	dayLayout = "2006-01-02"
)

// ReadingEvent describes a freshly recorded reading for challenge bookkeeping.
type ReadingEvent struct {
	At                    time.Time // local time of the reading
	Status                model.Status
	TodayInZonePercentage float64 // 0 ~ 100, over the beacon's readings today
}

// Outcome reports what a game mutation caused.
type Outcome struct {
	XPGained            int
	Level               int
	LeveledUp           bool
	CompletedChallenges []model.DailyChallenge
	UnlockedBadges      []model.Badge
}

// Manager owns XP, level, daily challenges and badges. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	state    *model.GameState
	filePath string
	log      *zap.Logger
}

// NewManager loads or initializes state from filePath. An empty filePath keeps
// state in memory only. Other processes may write the same file; every
// public method reloads it before reading or mutating.
func NewManager(filePath string, logger *zap.Logger, now time.Time) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		state:    &model.GameState{Level: model.UserLevel{CurrentLevel: 1}, Badges: catalog.DefaultBadges()},
		filePath: filePath,
		log:      logger.With(zap.String("component", "game")),
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	m.rollOverLocked(now)
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// load replaces the in-memory state with the file contents.
func (m *Manager) load() error {
	if m.filePath == "" {
		return nil
	}
	state, err := LoadState(m.filePath)
	if err != nil {
		return err
	}
	if state.Level.CurrentLevel == 0 {
		state.Level.CurrentLevel = 1
	}
	if len(state.Badges) == 0 {
		state.Badges = catalog.DefaultBadges()
	}
	m.state = state
	return nil
}

// refreshLocked reloads state, keeping the cached copy if the file is unreadable.
func (m *Manager) refreshLocked() {
	if err := m.load(); err != nil {
		m.log.Warn("reload game state, using cached copy", zap.Error(err))
	}
}

// State returns a copy of the current game state.
func (m *Manager) State() model.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshLocked()
	s := *m.state
	s.Challenges = append([]model.DailyChallenge(nil), m.state.Challenges...)
	s.Badges = append([]model.Badge(nil), m.state.Badges...)
	return s
}

// AddXP grants amount XP, levelling up as far as it reaches.
func (m *Manager) AddXP(amount int, at time.Time) *Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshLocked()
	out := &Outcome{}
	m.addXPLocked(amount, out)
	m.checkBadgesLocked(at, out)
	m.persist()
	return out
}

// RecordReading pays the per-reading XP and advances today's challenges.
func (m *Manager) RecordReading(ev ReadingEvent) *Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshLocked()
	m.rollOverLocked(ev.At)

	out := &Outcome{}
	m.addXPLocked(ReadingXP, out)

	for i := range m.state.Challenges {
		c := &m.state.Challenges[i]
		switch c.Kind {
		case model.ChallengeReadingCount:
			m.setChallengeLocked(i, c.CurrentValue+1, out)
		case model.ChallengeZonePercentage:
			if ev.Status == model.StatusInZone {
				m.setChallengeLocked(i, int(ev.TodayInZonePercentage), out)
			}
		case model.ChallengeEarlyBird:
			if ev.At.Hour() < EarlyBirdHour {
				m.setChallengeLocked(i, 1, out)
			}
		}
	}

	m.checkBadgesLocked(ev.At, out)
	m.persist()
	return out
}

// RollOver starts a new challenge day if now is past the current one. It
// reports whether the day changed.
func (m *Manager) RollOver(now time.Time) (bool, *Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshLocked()
	out := &Outcome{Level: m.state.Level.CurrentLevel}
	if !m.rollOverLocked(now) {
		return false, out
	}
	m.checkBadgesLocked(now, out)
	m.persist()
	return true, out
}

func (m *Manager) addXPLocked(amount int, out *Outcome) {
	lvl := &m.state.Level
	oldLevel := lvl.CurrentLevel
	lvl.CurrentXP += amount
	lvl.TotalXP += amount

	for lvl.CurrentLevel < model.MaxLevel && lvl.CurrentXP >= model.LevelRequirement(lvl.CurrentLevel+1) {
		lvl.CurrentLevel++
	}

	out.XPGained += amount
	out.Level = lvl.CurrentLevel
	if lvl.CurrentLevel > oldLevel {
		out.LeveledUp = true
		m.log.Info("level up", zap.Int("from", oldLevel), zap.Int("to", lvl.CurrentLevel))
	}
}

func (m *Manager) setChallengeLocked(i, value int, out *Outcome) {
	c := &m.state.Challenges[i]
	c.CurrentValue = value
	if c.IsCompleted || c.CurrentValue < c.TargetValue {
		return
	}
	c.IsCompleted = true
	m.state.CompletedChallenges++
	out.CompletedChallenges = append(out.CompletedChallenges, *c)
	m.log.Info("challenge completed", zap.String("challenge", c.ID), zap.Int("xp", c.XPReward))
	m.addXPLocked(c.XPReward, out)
}

// rollOverLocked regenerates challenges when now falls on a new local day and
// updates the perfect-day streak from the day being closed.
func (m *Manager) rollOverLocked(now time.Time) bool {
	today := now.Format(dayLayout)
	if m.state.ChallengesDay == today {
		return false
	}

	if prev := m.state.ChallengesDay; prev != "" {
		allDone := len(m.state.Challenges) > 0
		for _, c := range m.state.Challenges {
			if !c.IsCompleted {
				allDone = false
				break
			}
		}
		yesterday := now.AddDate(0, 0, -1).Format(dayLayout)
		switch {
		case !allDone:
			m.state.PerfectDayStreak = 0
		case prev == yesterday:
			m.state.PerfectDayStreak++
		default:
			m.state.PerfectDayStreak = 1
		}
	}

	m.state.Challenges = catalog.DefaultChallenges()
	m.state.ChallengesDay = today
	m.log.Info("daily challenges generated", zap.String("day", today), zap.Int("perfect_day_streak", m.state.PerfectDayStreak))
	return true
}

func (m *Manager) checkBadgesLocked(at time.Time, out *Outcome) {
	for i := range m.state.Badges {
		b := &m.state.Badges[i]
		if b.IsUnlocked || !m.badgeEarnedLocked(b.ID) {
			continue
		}
		m.unlockBadgeLocked(i, at)
		out.UnlockedBadges = append(out.UnlockedBadges, *b)
	}
}

func (m *Manager) badgeEarnedLocked(id string) bool {
	switch id {
	case catalog.BadgeFirstSteps:
		return m.state.CompletedChallenges >= 1
	case catalog.BadgeWeekWarrior:
		return m.state.CompletedChallenges >= 7
	case catalog.BadgeLevel10:
		return m.state.Level.CurrentLevel >= 10
	case catalog.BadgePerfectWeek:
		return m.state.PerfectDayStreak >= PerfectWeekDays
	default:
		return false
	}
}

func (m *Manager) unlockBadgeLocked(i int, at time.Time) {
	b := &m.state.Badges[i]
	t := at
	b.IsUnlocked = true
	b.UnlockedAt = &t
	m.log.Info("badge unlocked", zap.String("badge", b.ID))
}

func (m *Manager) persist() {
	if err := m.save(); err != nil {
		m.log.Error("failed to save game state", zap.Error(err))
	}
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	return SaveState(m.filePath, m.state)
}
