//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

// Package config handles configuration management for inkwave-etl.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for inkwave-etl.
type Config struct {
	// Connection is the PostgreSQL connection string for the warehouse.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Calendar holds configuration for the calendar subcommand.
	Calendar CalendarConfig `mapstructure:"calendar"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// LoadConfig holds configuration for fact loading.
type LoadConfig struct {
	// SalesCheckpointInterval is the commit cadence for the sales loader.
	SalesCheckpointInterval int `mapstructure:"sales_checkpoint_interval"`

	// DailyCheckpointInterval is the commit cadence for the daily-operations loader.
	DailyCheckpointInterval int `mapstructure:"daily_checkpoint_interval"`

	// BaseCurrency is the warehouse reporting currency.
	BaseCurrency string `mapstructure:"base_currency"`

	// DCStrategy selects how sales rows pick a distribution center.
	// The sales feed carries no station code, so the mapping is a policy
	// choice. Currently only "first-current" is implemented.
	DCStrategy string `mapstructure:"dc_strategy"`

	// SourceSystem is the lineage tag stamped on every fact row.
	SourceSystem string `mapstructure:"source_system"`
}

// CalendarConfig holds configuration for time dimension generation.
type CalendarConfig struct {
	// StartDate is the first calendar day to generate (YYYY-MM-DD).
	StartDate string `mapstructure:"start_date"`

	// EndDate is the last calendar day to generate (YYYY-MM-DD).
	EndDate string `mapstructure:"end_date"`
}

// SeedConfig holds configuration for staging/dimension data seeding.
type SeedConfig struct {
	// Editions is the number of product dimension rows to seed.
	Editions int `mapstructure:"editions"`

	// Stations is the number of distribution center rows to seed.
	Stations int `mapstructure:"stations"`

	// SalesRecords is the number of staging sales rows to seed.
	SalesRecords int `mapstructure:"sales_records"`

	// DailyRecords is the number of staging daily-operations rows to seed.
	DailyRecords int `mapstructure:"daily_records"`

	// UnknownRatio is the share of staging rows given natural keys that
	// resolve to no dimension, exercising the sentinel paths.
	UnknownRatio float64 `mapstructure:"unknown_ratio"`

	// RandomSeed makes seeding reproducible when non-zero.
	RandomSeed uint64 `mapstructure:"random_seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Load: LoadConfig{
			SalesCheckpointInterval: 500,
			DailyCheckpointInterval: 100,
			BaseCurrency:            "GBP",
			DCStrategy:              "first-current",
			SourceSystem:            "INKWAVE_CSV",
		},
		Calendar: CalendarConfig{
			StartDate: "2023-01-01",
			EndDate:   "2026-12-31",
		},
		Seed: SeedConfig{
			Editions:     500,
			Stations:     12,
			SalesRecords: 5000,
			DailyRecords: 1000,
			UnknownRatio: 0.02,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./inkwave-etl.yaml
// 3. ~/.config/inkwave-etl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("inkwave-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "inkwave-etl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Load.SalesCheckpointInterval < 1 {
		return fmt.Errorf("sales_checkpoint_interval must be at least 1")
	}
	if c.Load.DailyCheckpointInterval < 1 {
		return fmt.Errorf("daily_checkpoint_interval must be at least 1")
	}
	// The rate fallback table is defined against GBP; other base
	// currencies would need their own fallbacks.
	if c.Load.BaseCurrency != "GBP" {
		return fmt.Errorf("unsupported base_currency: %s", c.Load.BaseCurrency)
	}
	if c.Load.DCStrategy != "first-current" {
		return fmt.Errorf("unknown dc_strategy: %s", c.Load.DCStrategy)
	}
	if c.Load.SourceSystem == "" {
		return fmt.Errorf("source_system is required")
	}
	return nil
}

// ValidateCalendar checks configuration required for the calendar command.
func (c *Config) ValidateCalendar() error {
	if err := c.Validate(); err != nil {
		return err
	}
	start, err := time.Parse("2006-01-02", c.Calendar.StartDate)
	if err != nil {
		return fmt.Errorf("invalid calendar start_date: %w", err)
	}
	end, err := time.Parse("2006-01-02", c.Calendar.EndDate)
	if err != nil {
		return fmt.Errorf("invalid calendar end_date: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("calendar end_date must not precede start_date")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Seed.Editions < 1 {
		return fmt.Errorf("seed editions must be at least 1")
	}
	if c.Seed.Stations < 1 {
		return fmt.Errorf("seed stations must be at least 1")
	}
	if c.Seed.UnknownRatio < 0 || c.Seed.UnknownRatio > 1 {
		return fmt.Errorf("seed unknown_ratio must be between 0 and 1")
	}
	return nil
}
