package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"PulseBeacon/internal/notifier"
)

var recordCmd = &cobra.Command{
	Use:   "record [beacon] [value]",
	Short: "Record a reading for a beacon",
	Long: `Records a reading, classifies it against the beacon's zone and checks
achievements and daily challenges. The beacon is referenced by id or by
beacon name or metric name (case-insensitive).

Example:
  pulsebeacon record "Heart Rate (bpm)" 72`,
	Args: cobra.ExactArgs(2),
	RunE: runRecord,
}

var statsCmd = &cobra.Command{
	Use:   "stats [beacon]",
	Short: "Show statistics for a beacon",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and their progress",
	Args:  cobra.NoArgs,
	RunE:  runAchievements,
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show level, daily challenges and badges",
	Args:  cobra.NoArgs,
	RunE:  runProgress,
}

func runRecord(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	a, err := cliApp(out)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.tracker.Record(args[0], args[1])
	if err != nil && res != nil {
		fmt.Fprintf(out, "%s: %.1f stored, do not record it again\n", res.Beacon.Name, res.Reading.Value)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s  %s\n", res.Beacon.Name,
		notifier.FormatZoneIndicator(&res.Beacon, &res.Reading.Value), res.Status)
	if res.Game != nil {
		fmt.Fprintf(out, "+%d XP (level %d)\n", res.Game.XPGained, res.Game.Level)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := cliApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	b, st, err := a.tracker.Statistics(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), notifier.FormatStatistics(b, st, a.tracker.LocalNow()))
	return nil
}

func runAchievements(cmd *cobra.Command, args []string) error {
	a, err := cliApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	achievements, err := a.tracker.Achievements()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), notifier.FormatAchievements(achievements))
	return nil
}

func runProgress(cmd *cobra.Command, args []string) error {
	a, err := cliApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.game.State()
	fmt.Fprint(cmd.OutOrStdout(), notifier.FormatProgress(&state))
	return nil
}
