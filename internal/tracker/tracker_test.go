package tracker

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"PulseBeacon/internal/game"
	"PulseBeacon/internal/model"
	"PulseBeacon/internal/store"
)

var clock = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Notify(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, text)
	return nil
}

func (r *recorder) contains(sub string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

func testCatalogue() []model.Achievement {
	return []model.Achievement{
		{ID: "first", Title: "First", Requirement: model.TotalReadings(1)},
		{ID: "three", Title: "Three", Requirement: model.TotalReadings(3)},
		{ID: "hot", Title: "Hot", Requirement: model.Milestone(100)},
	}
}

func newTracker(t *testing.T, st store.Store, catalogue []model.Achievement) (*Tracker, *recorder) {
	t.Helper()
	gm, err := game.NewManager("", zap.NewNop(), clock)
	require.NoError(t, err)
	n := &recorder{}
	tr, err := New(st, gm, n, catalogue, time.UTC, zap.NewNop())
	require.NoError(t, err)
	tr.Now = func() time.Time { return clock }
	return tr, n
}

func crit(v float64) *float64 { return &v }

func achievements(t *testing.T, tr *Tracker) []model.Achievement {
	t.Helper()
	all, err := tr.Achievements()
	require.NoError(t, err)
	return all
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"72", 72, true},
		{" 72.5 ", 72.5, true},
		{"72,5", 72.5, true},
		{"-3", -3, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"+Inf", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.in)
		if !tt.ok {
			require.ErrorIs(t, err, model.ErrValidation, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		require.Equal(t, tt.want, got)
	}
}

func TestRecord_UnlocksAndPersists(t *testing.T) {
	st := store.NewMemoryStore()
	tr, n := newTracker(t, st, testCatalogue())
	_, err := tr.AddBeacon("Heart Rate", 60, 80, crit(100))
	require.NoError(t, err)

	res, err := tr.Record("heart rate", "50")
	require.NoError(t, err)
	require.Equal(t, model.StatusOutOfZone, res.Status)
	require.Len(t, res.NewlyUnlocked, 1)
	require.Equal(t, "first", res.NewlyUnlocked[0].ID)
	require.Equal(t, game.ReadingXP+AchievementXP, res.Game.XPGained)
	require.True(t, n.contains("Achievement unlocked: First"))

	res, err = tr.Record("Heart Rate", "120")
	require.NoError(t, err)
	require.Equal(t, model.StatusCritical, res.Status)
	require.Len(t, res.NewlyUnlocked, 1)
	require.Equal(t, "hot", res.NewlyUnlocked[0].ID)
	require.True(t, n.contains("critical"))

	all, err := tr.Achievements()
	require.NoError(t, err)
	require.True(t, all[0].IsUnlocked)
	require.False(t, all[1].IsUnlocked)
	require.InDelta(t, 2.0/3.0, all[1].Progress, 1e-9)

	records, err := st.AchievementRecords()
	require.NoError(t, err)
	require.Len(t, records, 3)

	// A fresh tracker over the same store sees the sticky unlocks.
	again, _ := newTracker(t, st, testCatalogue())
	got, err := again.Achievements()
	require.NoError(t, err)
	require.True(t, got[0].IsUnlocked)
	require.True(t, got[2].IsUnlocked)
	require.True(t, got[0].UnlockedAt.Equal(clock))
}

func TestRecord_RejectsBeforeAppending(t *testing.T) {
	st := store.NewMemoryStore()
	tr, _ := newTracker(t, st, testCatalogue())
	b, err := tr.AddBeacon("Weight", 70, 80, nil)
	require.NoError(t, err)

	_, err = tr.Record("Weight", "heavy")
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = tr.Record("Pace", "5")
	require.True(t, IsNotFound(err))

	readings, err := st.Readings(b.ID)
	require.NoError(t, err)
	require.Empty(t, readings)
}

func TestBeaconLifecycle(t *testing.T) {
	tr, _ := newTracker(t, store.NewMemoryStore(), testCatalogue())

	b, err := tr.AddBeaconFromTemplate("resting-heart-rate")
	require.NoError(t, err)
	require.Equal(t, "Resting Heart Rate", b.Name)
	require.Equal(t, "Heart Rate (bpm)", b.MetricName)

	_, err = tr.AddBeacon("resting heart rate", 1, 2, nil)
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = tr.AddBeacon("Broken", 10, 1, nil)
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = tr.AddBeaconFromTemplate("underwater-basket-weaving")
	require.True(t, IsNotFound(err))

	byID, err := tr.FindBeacon(b.ID.String())
	require.NoError(t, err)
	require.Equal(t, b.ID, byID.ID)
	byMetric, err := tr.FindBeacon("heart rate (BPM)")
	require.NoError(t, err)
	require.Equal(t, b.ID, byMetric.ID)

	_, err = tr.UpdateBeacon(b.ID.String(), 90, 50, nil)
	require.ErrorIs(t, err, model.ErrValidation)

	require.NoError(t, tr.RemoveBeacon("Resting Heart Rate"))
	_, err = tr.FindBeacon(b.ID.String())
	require.True(t, IsNotFound(err))
	list, err := tr.Beacons()
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestTemplatesSharingAMetric(t *testing.T) {
	tr, _ := newTracker(t, store.NewMemoryStore(), testCatalogue())

	var added []*model.Beacon
	for _, key := range []string{"running-heart-rate", "resting-heart-rate", "cardio-zone"} {
		b, err := tr.AddBeaconFromTemplate(key)
		require.NoError(t, err, key)
		require.Equal(t, "Heart Rate (bpm)", b.MetricName)
		added = append(added, b)
	}
	_, err := tr.AddBeaconFromTemplate("cardio-zone")
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = tr.FindBeacon("Heart Rate (bpm)")
	require.ErrorIs(t, err, ErrAmbiguous)
	_, err = tr.Record("Heart Rate (bpm)", "150")
	require.ErrorIs(t, err, ErrAmbiguous)

	res, err := tr.Record("cardio zone", "130")
	require.NoError(t, err)
	require.Equal(t, added[2].ID, res.Beacon.ID)
	require.Equal(t, model.StatusInZone, res.Status)
}

func TestUpdateBeacon_Reevaluates(t *testing.T) {
	catalogue := []model.Achievement{
		{ID: "all_in", Title: "All In", Requirement: model.InZonePercentage(100)},
	}
	tr, n := newTracker(t, store.NewMemoryStore(), catalogue)
	_, err := tr.AddBeacon("Cadence", 60, 80, nil)
	require.NoError(t, err)

	res, err := tr.Record("Cadence", "50")
	require.NoError(t, err)
	require.Empty(t, res.NewlyUnlocked)
	require.Equal(t, 0.0, achievements(t, tr)[0].Progress)

	_, err = tr.UpdateBeacon("Cadence", 40, 80, nil)
	require.NoError(t, err)
	require.True(t, achievements(t, tr)[0].IsUnlocked)
	require.True(t, n.contains("All In"))

	// Nothing left to unlock.
	unlocked, err := tr.ReevaluateAll()
	require.NoError(t, err)
	require.Empty(t, unlocked)
}

func TestReevaluateAll_PerfectDayFollowsClock(t *testing.T) {
	catalogue := []model.Achievement{
		{ID: "perfect", Title: "Perfect", Requirement: model.PerfectDay()},
	}
	st := store.NewMemoryStore()
	tr, _ := newTracker(t, st, catalogue)
	b, err := tr.AddBeacon("Power", 150, 250, nil)
	require.NoError(t, err)

	// Yesterday's readings only: nothing for today yet.
	require.NoError(t, st.AppendReading(b.ID, model.NewReading(clock.AddDate(0, 0, -1), 200)))
	unlocked, err := tr.ReevaluateAll()
	require.NoError(t, err)
	require.Empty(t, unlocked)

	// Same readings, evaluated as of yesterday.
	tr.Now = func() time.Time { return clock.AddDate(0, 0, -1).Add(time.Hour) }
	unlocked, err = tr.ReevaluateAll()
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
}

func TestStatistics(t *testing.T) {
	tr, _ := newTracker(t, store.NewMemoryStore(), testCatalogue())
	_, err := tr.AddBeacon("Speed", 20, 30, nil)
	require.NoError(t, err)
	for _, v := range []string{"25", "35", "20"} {
		_, err := tr.Record("Speed", v)
		require.NoError(t, err)
	}

	b, st, err := tr.Statistics("speed")
	require.NoError(t, err)
	require.Equal(t, "Speed", b.MetricName)
	require.Equal(t, 3, st.Count)
	require.Equal(t, 20.0, st.Min)
	require.Equal(t, 35.0, st.Max)
	require.Equal(t, 3, st.Last24h)
}

func TestRecord_ConcurrentUnlocksOnce(t *testing.T) {
	st := store.NewMemoryStore()
	tr, _ := newTracker(t, st, testCatalogue())
	b, err := tr.AddBeacon("Heart Rate", 60, 80, nil)
	require.NoError(t, err)

	const n = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		unlocked = map[string]int{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := tr.Record("Heart Rate", fmt.Sprint(60+i))
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			for _, a := range res.NewlyUnlocked {
				unlocked[a.ID]++
			}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	readings, err := st.Readings(b.ID)
	require.NoError(t, err)
	require.Len(t, readings, n)
	require.Equal(t, map[string]int{"first": 1, "three": 1}, unlocked)
}

func TestTrackersSharingSQLite_UnlocksSurviveStaleWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulsebeacon.db")
	open := func() store.Store {
		st, err := store.NewSQLiteStore(path, zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		return st
	}
	catalogue := []model.Achievement{
		{ID: "perfect", Title: "Perfect", Requirement: model.PerfectDay()},
		{ID: "three", Title: "Three", Requirement: model.TotalReadings(3)},
	}

	// The daemon starts first and holds its tracker for the whole day.
	daemon, _ := newTracker(t, open(), catalogue)
	cli, _ := newTracker(t, open(), catalogue)

	_, err := cli.AddBeacon("Heart Rate", 50, 70, nil)
	require.NoError(t, err)
	res, err := cli.Record("Heart Rate", "60")
	require.NoError(t, err)
	require.Len(t, res.NewlyUnlocked, 1)

	// At midnight the daemon re-runs every pass. Today has no readings,
	// so perfect-day evaluates locked, but the stored unlock must stand.
	daemon.Now = func() time.Time { return clock.Add(24 * time.Hour) }
	unlocked, err := daemon.ReevaluateAll()
	require.NoError(t, err)
	require.Empty(t, unlocked)

	for _, tr := range []*Tracker{daemon, cli} {
		got := achievements(t, tr)
		require.True(t, got[0].IsUnlocked)
		require.True(t, got[0].UnlockedAt.Equal(clock))
		require.InDelta(t, 1.0/3.0, got[1].Progress, 1e-9)
	}
}

type failingSave struct {
	*store.MemoryStore
}

func (failingSave) SaveAchievementRecords([]model.AchievementRecord) error {
	return errors.New("disk full")
}

func TestRecord_ReturnsStoredReadingWhenEvaluationFails(t *testing.T) {
	st := failingSave{store.NewMemoryStore()}
	tr, _ := newTracker(t, st, testCatalogue())
	b, err := tr.AddBeacon("Heart Rate", 60, 80, nil)
	require.NoError(t, err)

	res, err := tr.Record("Heart Rate", "70")
	require.Error(t, err)
	require.NotNil(t, res)
	require.Equal(t, 70.0, res.Reading.Value)
	require.Equal(t, model.StatusInZone, res.Status)
	require.NotNil(t, res.Game)

	readings, err := st.Readings(b.ID)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	require.Equal(t, res.Reading.ID, readings[0].ID)
}
