package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"PulseBeacon/internal/config"
	"PulseBeacon/internal/tracker"
)

const defaultConfigPath = "configs/config.yaml"

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pulsebeacon",
	Short: "Track training metrics against target zones and earn achievements",
	Long: `PulseBeacon tracks metrics ("beacons") against a target zone with an
optional critical threshold. Every reading is classified as in zone, out of
zone or critical, advances daily challenges and XP, and is checked against
the achievement catalogue.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = defaultConfigPath
			if v := os.Getenv("CONFIG_PATH"); v != "" {
				path = v
			}
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		logger, err = buildLogger(cfg.Log, cmd == serveCmd)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// buildLogger honours log.level, except that one-shot commands stay quiet
// below warn unless --verbose is set.
func buildLogger(lc config.LogConfig, longRunning bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	switch {
	case verbose:
		level = zapcore.DebugLevel
	case !longRunning && level < zapcore.WarnLevel:
		level = zapcore.WarnLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// friendlyError adds a hint for lookups the user can fix.
func friendlyError(err error) string {
	switch {
	case tracker.IsNotFound(err):
		return err.Error() + "\nSee `pulsebeacon beacon list` or `pulsebeacon beacon templates`."
	case errors.Is(err, tracker.ErrAmbiguous):
		return err.Error() + "\nUse the beacon name or id shown by `pulsebeacon beacon list`."
	default:
		return err.Error()
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CONFIG_PATH or "+defaultConfigPath+")")

	rootCmd.AddCommand(beaconCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, friendlyError(err))
		os.Exit(1)
	}
}
