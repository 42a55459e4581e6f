package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"PulseBeacon/internal/game"
	"PulseBeacon/internal/notifier"
	"PulseBeacon/internal/tracker"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Tracker  *tracker.Tracker
	Game     *game.Manager
	Notifier notifier.Notifier
	log      *zap.Logger
}

// NewScheduler creates a new Scheduler whose cron specs are interpreted in loc.
func NewScheduler(tr *tracker.Tracker, gm *game.Manager, n notifier.Notifier, loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Tracker:  tr,
		Game:     gm,
		Notifier: n,
		log:      logger.With(zap.String("component", "scheduler")),
	}
}

// RegisterAll registers the daily reset and the daily summary.
func (s *Scheduler) RegisterAll(dailyResetCron, summaryCron string) error {
	if _, err := s.Cron.AddFunc(dailyResetCron, s.dailyReset); err != nil {
		return fmt.Errorf("register daily reset: %w", err)
	}
	if _, err := s.Cron.AddFunc(summaryCron, s.dailySummary); err != nil {
		return fmt.Errorf("register daily summary: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunDailyResetNow executes the daily reset immediately.
func (s *Scheduler) RunDailyResetNow() {
	s.dailyReset()
}

// RunSummaryNow executes the daily summary immediately.
func (s *Scheduler) RunSummaryNow() {
	s.dailySummary()
}

// dailyReset starts a new challenge day and re-runs achievement passes, since
// day-relative requirements move with the calendar.
func (s *Scheduler) dailyReset() {
	now := s.Tracker.LocalNow()
	s.log.Info("running daily reset")

	if changed, out := s.Game.RollOver(now); changed {
		for i := range out.UnlockedBadges {
			s.trySend(notifier.FormatBadgeUnlocked(&out.UnlockedBadges[i]))
		}
	}
	if _, err := s.Tracker.ReevaluateAll(); err != nil {
		s.log.Error("daily re-evaluation failed", zap.Error(err))
	}
}

func (s *Scheduler) dailySummary() {
	s.log.Info("running daily summary")
	beacons, err := s.Tracker.Beacons()
	if err != nil {
		s.log.Error("list beacons", zap.Error(err))
		return
	}

	var sb strings.Builder
	for _, b := range beacons {
		_, st, err := s.Tracker.Statistics(b.ID.String())
		if err != nil {
			s.log.Error("beacon statistics", zap.String("beacon", b.Name), zap.Error(err))
			continue
		}
		sb.WriteString(notifier.FormatStatistics(&b, st, s.Tracker.LocalNow()))
		sb.WriteString("\n")
	}
	state := s.Game.State()
	sb.WriteString(notifier.FormatProgress(&state))
	s.trySend(sb.String())
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(text); err != nil {
		s.log.Error("send notification", zap.Error(err))
	}
}
