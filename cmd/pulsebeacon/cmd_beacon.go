package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"PulseBeacon/internal/catalog"
	"PulseBeacon/internal/model"
	"PulseBeacon/internal/notifier"
)

var (
	beaconName     string
	beaconMin      float64
	beaconMax      float64
	beaconCritical float64
	beaconTemplate string
	templateFilter string
)

var beaconCmd = &cobra.Command{
	Use:   "beacon",
	Short: "Manage beacons (tracked metrics with a target zone)",
}

var beaconAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a beacon from flags or a template",
	Long: `Adds a beacon. Either give --template with a template key or name, or
give --name, --min and --max (and optionally --critical).

Examples:
  pulsebeacon beacon add --template resting-heart-rate
  pulsebeacon beacon add --name "Cadence (spm)" --min 170 --max 185`,
	Args: cobra.NoArgs,
	RunE: runBeaconAdd,
}

var beaconListCmd = &cobra.Command{
	Use:   "list",
	Short: "List beacons",
	Args:  cobra.NoArgs,
	RunE:  runBeaconList,
}

var beaconUpdateCmd = &cobra.Command{
	Use:   "update [beacon]",
	Short: "Change a beacon's zone and re-check achievements",
	Args:  cobra.ExactArgs(1),
	RunE:  runBeaconUpdate,
}

var beaconRemoveCmd = &cobra.Command{
	Use:   "remove [beacon]",
	Short: "Remove a beacon and its readings",
	Args:  cobra.ExactArgs(1),
	RunE:  runBeaconRemove,
}

var beaconTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List built-in beacon templates",
	Args:  cobra.NoArgs,
	RunE:  runBeaconTemplates,
}

func init() {
	for _, c := range []*cobra.Command{beaconAddCmd, beaconUpdateCmd} {
		c.Flags().Float64Var(&beaconMin, "min", 0, "Lower bound of the target zone (inclusive)")
		c.Flags().Float64Var(&beaconMax, "max", 0, "Upper bound of the target zone (inclusive)")
		c.Flags().Float64Var(&beaconCritical, "critical", 0, "Value at or above which a reading is critical")
	}
	beaconAddCmd.Flags().StringVar(&beaconName, "name", "", "Metric name")
	beaconAddCmd.Flags().StringVar(&beaconTemplate, "template", "", "Template key or name")
	beaconAddCmd.MarkFlagsMutuallyExclusive("name", "template")
	beaconUpdateCmd.MarkFlagRequired("min")
	beaconUpdateCmd.MarkFlagRequired("max")
	beaconTemplatesCmd.Flags().StringVar(&templateFilter, "category", "", "Only show one sport category")

	beaconCmd.AddCommand(beaconAddCmd)
	beaconCmd.AddCommand(beaconListCmd)
	beaconCmd.AddCommand(beaconUpdateCmd)
	beaconCmd.AddCommand(beaconRemoveCmd)
	beaconCmd.AddCommand(beaconTemplatesCmd)
}

// criticalFlag returns --critical only when it was given.
func criticalFlag(cmd *cobra.Command) *float64 {
	if !cmd.Flags().Changed("critical") {
		return nil
	}
	v := beaconCritical
	return &v
}

func runBeaconAdd(cmd *cobra.Command, args []string) error {
	a, err := cliApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	var b *model.Beacon
	if beaconTemplate != "" {
		b, err = a.tracker.AddBeaconFromTemplate(beaconTemplate)
	} else {
		b, err = a.tracker.AddBeacon(beaconName, beaconMin, beaconMax, criticalFlag(cmd))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", notifier.FormatBeacon(b))
	return nil
}

func runBeaconList(cmd *cobra.Command, args []string) error {
	a, err := cliApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	beacons, err := a.tracker.Beacons()
	if err != nil {
		return err
	}
	if len(beacons) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No beacons yet. Add one with `pulsebeacon beacon add`.")
		return nil
	}
	for i := range beacons {
		fmt.Fprintln(cmd.OutOrStdout(), notifier.FormatBeacon(&beacons[i]))
	}
	return nil
}

func runBeaconUpdate(cmd *cobra.Command, args []string) error {
	a, err := cliApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := a.tracker.UpdateBeacon(args[0], beaconMin, beaconMax, criticalFlag(cmd))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", notifier.FormatBeacon(b))
	return nil
}

func runBeaconRemove(cmd *cobra.Command, args []string) error {
	a, err := cliApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tracker.RemoveBeacon(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}

func runBeaconTemplates(cmd *cobra.Command, args []string) error {
	templates := catalog.Templates()
	if templateFilter != "" {
		templates = nil
		for _, c := range model.Categories {
			if strings.EqualFold(string(c), templateFilter) {
				templates = catalog.TemplatesFor(c)
			}
		}
		if templates == nil {
			return fmt.Errorf("%w: unknown category %q", model.ErrValidation, templateFilter)
		}
	}
	for _, t := range templates {
		line := fmt.Sprintf("%-20s %-14s %-18s %g–%g", t.Key, t.Category, t.MetricName, t.MinValue, t.MaxValue)
		if t.CriticalThreshold != nil {
			line += fmt.Sprintf("  critical ≥ %g", *t.CriticalThreshold)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
