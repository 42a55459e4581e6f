package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"PulseBeacon/internal/notifier"
	"PulseBeacon/internal/scheduler"
)

var resetOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily reset and summary jobs until interrupted",
	Long: `Runs the scheduler: the daily reset rolls over challenges and re-checks
day-relative achievements, and the daily summary posts statistics for every
beacon. Notifications go to the log and stdout.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&resetOnStart, "reset-on-start", os.Getenv("RUN_ON_START") == "true",
		"Run the daily reset immediately (or set RUN_ON_START=true)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info("PulseBeacon starting")

	n := notifier.Multi{notifier.NewLogNotifier(logger), notifier.NewWriterNotifier(cmd.OutOrStdout())}
	a, err := openApp(n)
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.NewScheduler(a.tracker, a.game, n, a.loc, logger)
	if err := sched.RegisterAll(cfg.Schedule.DailyResetCron, cfg.Schedule.SummaryCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if resetOnStart {
		logger.Info("reset on start enabled, running daily reset now")
		sched.RunDailyResetNow()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("PulseBeacon is running, press Ctrl+C to stop",
		zap.String("daily_reset", cfg.Schedule.DailyResetCron),
		zap.String("summary", cfg.Schedule.SummaryCron),
	)
	<-ctx.Done()

	logger.Info("shutdown signal received, stopping")
	return nil
}
