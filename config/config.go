// Package config loads server configuration from a TOML file with sane
// defaults. Flags may override individual values at startup.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all budget-engine configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Calendar  CalendarConfig  `toml:"calendar"`
	Reminders RemindersConfig `toml:"reminders"`
}

// ServerConfig holds HTTP and database settings.
type ServerConfig struct {
	Port   int    `toml:"port"`
	DBPath string `toml:"db_path"`
}

// CalendarConfig pins the calendar identity. Results must be reproducible
// independent of device locale, so the timezone is always explicit - there
// is no "current calendar" fallback.
type CalendarConfig struct {
	Timezone string `toml:"timezone"`
}

// RemindersConfig holds reminder scheduler settings.
type RemindersConfig struct {
	Enabled        bool `toml:"enabled"`
	AlertHour      int  `toml:"alert_hour"`
	AlertMinute    int  `toml:"alert_minute"`
	RefreshMinutes int  `toml:"refresh_minutes"`
	HorizonDays    int  `toml:"horizon_days"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:   8080,
			DBPath: "budget.db",
		},
		Calendar: CalendarConfig{
			Timezone: "UTC",
		},
		Reminders: RemindersConfig{
			Enabled:        true,
			AlertHour:      9,
			RefreshMinutes: 60,
			HorizonDays:    30,
		},
	}
}

// Load reads the config file at path, returning defaults if it doesn't
// exist. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c CalendarConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RefreshInterval returns the scheduler check interval.
func (c RemindersConfig) RefreshInterval() time.Duration {
	if c.RefreshMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.RefreshMinutes) * time.Minute
}
