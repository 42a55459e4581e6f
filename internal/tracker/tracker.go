package tracker

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"PulseBeacon/internal/calculator"
	"PulseBeacon/internal/catalog"
	"PulseBeacon/internal/evaluator"
	"PulseBeacon/internal/game"
	"PulseBeacon/internal/model"
	"PulseBeacon/internal/notifier"
	"PulseBeacon/internal/store"
)

// AchievementXP is granted for every newly unlocked achievement.
const AchievementXP = 50

// ErrAmbiguous is returned when a metric name matches more than one beacon.
var ErrAmbiguous = errors.New("ambiguous beacon reference")

// RecordResult reports everything one recorded reading caused.
type RecordResult struct {
	Beacon        model.Beacon
	Reading       model.Reading
	Status        model.Status
	NewlyUnlocked []model.Achievement
	Game          *game.Outcome
}

// Tracker owns one user's beacons, readings and achievements. Every
// append-evaluate-persist sequence runs under a single mutex. Achievement
// state is read from the store on every pass, since other processes may
// share it.
type Tracker struct {
	Store    store.Store
	Game     *game.Manager
	Notifier notifier.Notifier
	Now      func() time.Time

	mu        sync.Mutex
	catalogue []model.Achievement
	loc       *time.Location
	log       *zap.Logger
}

// New creates a Tracker. catalogue is the achievement metadata; persisted
// unlock state comes from st.
func New(st store.Store, gm *game.Manager, n notifier.Notifier, catalogue []model.Achievement, loc *time.Location, logger *zap.Logger) (*Tracker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	if _, err := st.AchievementRecords(); err != nil {
		return nil, fmt.Errorf("load achievement records: %w", err)
	}
	return &Tracker{
		Store:     st,
		Game:      gm,
		Notifier:  n,
		Now:       time.Now,
		catalogue: append([]model.Achievement(nil), catalogue...),
		loc:       loc,
		log:       logger.With(zap.String("component", "tracker")),
	}, nil
}

// ParseValue converts user text into a reading value. A comma decimal
// separator is accepted.
func ParseValue(text string) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", model.ErrValidation)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", model.ErrValidation, text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", model.ErrValidation, text)
	}
	return v, nil
}

// LocalNow is the tracker clock in its configured location.
func (t *Tracker) LocalNow() time.Time {
	return t.Now().In(t.loc)
}

// AddBeacon validates and stores a new beacon named after its metric.
func (t *Tracker) AddBeacon(metricName string, minValue, maxValue float64, critical *float64) (*model.Beacon, error) {
	b, err := model.NewBeacon(metricName, minValue, maxValue, critical)
	if err != nil {
		return nil, err
	}
	return t.add(b)
}

// AddBeaconFromTemplate creates a beacon from a built-in template key or name.
// The beacon takes the template's name, so templates sharing a metric can
// coexist.
func (t *Tracker) AddBeaconFromTemplate(ref string) (*model.Beacon, error) {
	tpl, ok := catalog.Template(ref)
	if !ok {
		return nil, fmt.Errorf("template %q: %w", ref, store.ErrNotFound)
	}
	b, err := tpl.Beacon()
	if err != nil {
		return nil, err
	}
	return t.add(b)
}

func (t *Tracker) add(b *model.Beacon) (*model.Beacon, error) {
	b.CreatedAt = t.LocalNow()

	t.mu.Lock()
	defer t.mu.Unlock()

	all, err := t.Store.Beacons()
	if err != nil {
		return nil, err
	}
	for _, o := range all {
		if strings.EqualFold(o.Name, b.Name) {
			return nil, fmt.Errorf("%w: beacon %q already exists", model.ErrValidation, b.Name)
		}
	}
	if err := t.Store.SaveBeacon(b); err != nil {
		return nil, err
	}
	t.log.Info("beacon added", zap.String("beacon", b.Name), zap.String("metric", b.MetricName), zap.String("id", b.ID.String()))
	return b, nil
}

// UpdateBeacon changes a beacon's zone and re-evaluates its achievements
// against the new bounds.
func (t *Tracker) UpdateBeacon(ref string, minValue, maxValue float64, critical *float64) (*model.Beacon, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := t.findLocked(ref)
	if err != nil {
		return nil, err
	}
	updated := *b
	updated.MinValue, updated.MaxValue, updated.CriticalThreshold = minValue, maxValue, critical
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := t.Store.SaveBeacon(&updated); err != nil {
		return nil, err
	}
	if _, err := t.evaluateLocked(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveBeacon deletes a beacon and its readings. Unlocked achievements stay unlocked.
func (t *Tracker) RemoveBeacon(ref string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := t.findLocked(ref)
	if err != nil {
		return err
	}
	if err := t.Store.DeleteBeacon(b.ID); err != nil {
		return err
	}
	t.log.Info("beacon removed", zap.String("beacon", b.Name))
	return nil
}

// Beacons lists all beacons in creation order.
func (t *Tracker) Beacons() ([]model.Beacon, error) {
	return t.Store.Beacons()
}

// FindBeacon resolves ref as a beacon id, a beacon name or a metric name,
// all case-insensitive. A metric name shared by several beacons yields
// ErrAmbiguous.
func (t *Tracker) FindBeacon(ref string) (*model.Beacon, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.findLocked(ref)
}

func (t *Tracker) findLocked(ref string) (*model.Beacon, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return t.Store.Beacon(id)
	}
	all, err := t.Store.Beacons()
	if err != nil {
		return nil, err
	}
	ref = strings.TrimSpace(ref)
	for i := range all {
		if strings.EqualFold(all[i].Name, ref) {
			return &all[i], nil
		}
	}
	var matches []*model.Beacon
	for i := range all {
		if strings.EqualFold(all[i].MetricName, ref) {
			matches = append(matches, &all[i])
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("beacon %q: %w", ref, store.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return nil, fmt.Errorf("%w: %q is tracked by %s", ErrAmbiguous, ref, strings.Join(names, ", "))
	}
}

// Record parses text, appends it as a reading of the referenced beacon,
// advances the game and evaluates achievements. Once the reading is appended
// it stays stored: a later failure returns the partial result together with
// the error, and the caller must not record the value again.
func (t *Tracker) Record(ref, text string) (*RecordResult, error) {
	value, err := ParseValue(text)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := t.findLocked(ref)
	if err != nil {
		return nil, err
	}
	now := t.LocalNow()
	reading := model.NewReading(now, value)
	if err := t.Store.AppendReading(b.ID, reading); err != nil {
		return nil, err
	}

	res := &RecordResult{Beacon: *b, Reading: reading, Status: b.Status(value)}
	t.log.Debug("reading recorded",
		zap.String("beacon", b.Name),
		zap.Float64("value", value),
		zap.String("status", string(res.Status)),
	)
	if res.Status == model.StatusCritical {
		t.notify(notifier.FormatCritical(b, value))
	}

	readings, err := t.Store.Readings(b.ID)
	if err != nil {
		return res, fmt.Errorf("reading stored, evaluation skipped: %w", err)
	}

	res.Game = t.Game.RecordReading(game.ReadingEvent{
		At:                    now,
		Status:                res.Status,
		TodayInZonePercentage: calculator.InZonePercentage(b, calculator.SameDay(readings, now)),
	})

	pass, err := t.applyLocked(b, readings, now)
	if err != nil {
		return res, fmt.Errorf("reading stored, evaluation failed: %w", err)
	}
	res.NewlyUnlocked = pass.NewlyUnlocked
	if len(pass.NewlyUnlocked) > 0 {
		xp := t.Game.AddXP(AchievementXP*len(pass.NewlyUnlocked), now)
		mergeOutcome(res.Game, xp)
	}
	t.announceGame(res.Game)
	return res, nil
}

// Reevaluate runs an achievement pass for one beacon without recording anything.
func (t *Tracker) Reevaluate(ref string) ([]model.Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := t.findLocked(ref)
	if err != nil {
		return nil, err
	}
	return t.evaluateLocked(b)
}

// ReevaluateAll runs an achievement pass for every beacon. Day-relative
// requirements change at midnight without any new reading.
func (t *Tracker) ReevaluateAll() ([]model.Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	beacons, err := t.Store.Beacons()
	if err != nil {
		return nil, err
	}
	var unlocked []model.Achievement
	for i := range beacons {
		got, err := t.evaluateLocked(&beacons[i])
		if err != nil {
			return unlocked, err
		}
		unlocked = append(unlocked, got...)
	}
	return unlocked, nil
}

func (t *Tracker) evaluateLocked(b *model.Beacon) ([]model.Achievement, error) {
	readings, err := t.Store.Readings(b.ID)
	if err != nil {
		return nil, err
	}
	now := t.LocalNow()
	pass, err := t.applyLocked(b, readings, now)
	if err != nil {
		return nil, err
	}
	if len(pass.NewlyUnlocked) > 0 {
		t.announceGame(t.Game.AddXP(AchievementXP*len(pass.NewlyUnlocked), now))
	}
	return pass.NewlyUnlocked, nil
}

// currentLocked overlays the stored achievement records on the catalogue.
func (t *Tracker) currentLocked() ([]model.Achievement, error) {
	records, err := t.Store.AchievementRecords()
	if err != nil {
		return nil, fmt.Errorf("load achievement records: %w", err)
	}
	return catalog.Apply(t.catalogue, records), nil
}

// applyLocked runs the evaluator over the stored achievement state, persists
// when anything changed and announces new unlocks.
func (t *Tracker) applyLocked(b *model.Beacon, readings []model.Reading, now time.Time) (*evaluator.Pass, error) {
	current, err := t.currentLocked()
	if err != nil {
		return nil, err
	}
	pass := evaluator.Run(current, b, readings, now)
	if !pass.Changed(current) {
		return pass, nil
	}
	if err := t.Store.SaveAchievementRecords(pass.Records()); err != nil {
		return nil, fmt.Errorf("save achievements: %w", err)
	}

	for i := range pass.NewlyUnlocked {
		a := &pass.NewlyUnlocked[i]
		t.log.Info("achievement unlocked", zap.String("achievement", a.ID), zap.String("beacon", b.Name))
		t.notify(notifier.FormatAchievementUnlocked(a))
	}
	return pass, nil
}

// Statistics summarizes one beacon's readings.
func (t *Tracker) Statistics(ref string) (*model.Beacon, *calculator.Statistics, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := t.findLocked(ref)
	if err != nil {
		return nil, nil, err
	}
	readings, err := t.Store.Readings(b.ID)
	if err != nil {
		return nil, nil, err
	}
	return b, calculator.Compute(b, readings, t.LocalNow()), nil
}

// Achievements returns the catalogue with its current stored state.
func (t *Tracker) Achievements() ([]model.Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentLocked()
}

func (t *Tracker) announceGame(out *game.Outcome) {
	if out == nil {
		return
	}
	for i := range out.CompletedChallenges {
		t.notify(notifier.FormatChallengeCompleted(&out.CompletedChallenges[i]))
	}
	for i := range out.UnlockedBadges {
		t.notify(notifier.FormatBadgeUnlocked(&out.UnlockedBadges[i]))
	}
	if out.LeveledUp {
		t.notify(notifier.FormatLevelUp(out.Level))
	}
}

func (t *Tracker) notify(text string) {
	if t.Notifier == nil {
		return
	}
	if err := t.Notifier.Notify(text); err != nil {
		t.log.Warn("notification failed", zap.Error(err))
	}
}

func mergeOutcome(dst, src *game.Outcome) {
	dst.XPGained += src.XPGained
	dst.Level = src.Level
	dst.LeveledUp = dst.LeveledUp || src.LeveledUp
	dst.CompletedChallenges = append(dst.CompletedChallenges, src.CompletedChallenges...)
	dst.UnlockedBadges = append(dst.UnlockedBadges, src.UnlockedBadges...)
}

// IsNotFound reports whether err means an unknown beacon or template.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
