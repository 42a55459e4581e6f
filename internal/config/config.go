package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// MemoryPath as a storage path keeps that data in process memory only.
const MemoryPath = "memory"

// DatabaseConfig selects the reading store.
type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path" env:"PULSEBEACON_SQLITE_PATH"`
}

type GameConfig struct {
	StateFile string `yaml:"state_file" env:"PULSEBEACON_STATE_FILE"`
}

type CatalogueConfig struct {
	AchievementsFile string `yaml:"achievements_file" env:"PULSEBEACON_ACHIEVEMENTS_FILE"`
}

// ScheduleConfig holds cron specs with a leading seconds field.
type ScheduleConfig struct {
	DailyResetCron string `yaml:"daily_reset_cron" env:"PULSEBEACON_DAILY_RESET_CRON"`
	SummaryCron    string `yaml:"summary_cron" env:"PULSEBEACON_SUMMARY_CRON"`
}

type LogConfig struct {
	Level       string `yaml:"level" env:"PULSEBEACON_LOG_LEVEL"`
	Development bool   `yaml:"development" env:"PULSEBEACON_LOG_DEVELOPMENT"`
}

// Config holds all application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Game      GameConfig      `yaml:"game"`
	Catalogue CatalogueConfig `yaml:"catalogue"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Log       LogConfig       `yaml:"log"`
	Timezone  string          `yaml:"timezone" env:"PULSEBEACON_TIMEZONE"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Defaults
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/pulsebeacon.db"
	}
	if cfg.Game.StateFile == "" {
		cfg.Game.StateFile = "data/game_state.json"
	}
	if cfg.Schedule.DailyResetCron == "" {
		cfg.Schedule.DailyResetCron = "0 0 0 * * *"
	}
	if cfg.Schedule.SummaryCron == "" {
		cfg.Schedule.SummaryCron = "0 0 21 * * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	return cfg, nil
}

// Validate checks that cron specs, timezone and log level are usable.
func (c *Config) Validate() error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.DailyResetCron); err != nil {
		return fmt.Errorf("schedule.daily_reset_cron: %w", err)
	}
	if _, err := parser.Parse(c.Schedule.SummaryCron); err != nil {
		return fmt.Errorf("schedule.summary_cron: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Location resolves Timezone; "Local" is the host zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
