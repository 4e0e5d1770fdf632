package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceConfig says where task, habit and completion records come from.
// File takes precedence over the URLs when set.
type SourceConfig struct {
	// File is a local JSON snapshot: {"tasks": [...], "habits": [...], "logs": [...]}.
	File string `yaml:"file,omitempty" json:"file,omitempty"`

	TasksURL  string `yaml:"tasks_url" json:"tasks_url"`
	HabitsURL string `yaml:"habits_url" json:"habits_url"`
	// LogsURL is optional; without it no habit shows as done.
	LogsURL string `yaml:"logs_url,omitempty" json:"logs_url,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the JSON API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone decides what "today" is and how wall-clock times are written
	// to the ICS feed (e.g. "Europe/Warsaw").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is "monday" (default) or "sunday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// DefaultView is the view a front-end opens with: "day", "week" or "month".
	DefaultView string `yaml:"default_view" json:"default_view"`

	// ShowHabits toggles habit occurrences in every view.
	ShowHabits bool `yaml:"show_habits" json:"show_habits"`

	// Midnight is the policy for events running past 24:00: "clip" or "overflow".
	Midnight string `yaml:"midnight" json:"midnight"`

	// RefreshCron is a cron-style schedule for re-fetching records.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// CacheDir holds HTTP cache metadata and bodies of fetched records.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Source SourceConfig `yaml:"source" json:"source"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Europe/Warsaw",
		WeekStart:   "monday",
		DefaultView: "week",
		ShowHabits:  true,
		Midnight:    "clip",
		RefreshCron: "*/5 * * * *",
		LogLevel:    "info",
		CacheDir:    "./var/cache",
		Source: SourceConfig{
			TasksURL:  "http://127.0.0.1:8000/tasks/all",
			HabitsURL: "http://127.0.0.1:8000/habits",
		},
	}
}

// Normalize fills in missing or unknown values with defaults so that
// partially-filled configs still behave correctly. ShowHabits is left as
// written.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	c.WeekStart = oneOf(c.WeekStart, def.WeekStart, "monday", "sunday")
	c.DefaultView = oneOf(c.DefaultView, def.DefaultView, "day", "week", "month")
	c.Midnight = oneOf(c.Midnight, def.Midnight, "clip", "overflow")
	c.LogLevel = oneOf(c.LogLevel, def.LogLevel, "debug", "info", "warn", "error")
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
}

func oneOf(v, def string, allowed ...string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return def
}

// WeekStartDay maps WeekStart onto time.Weekday.
func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, err
	}
	return loc, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (creating parent directories) and returned.
//   - Otherwise the YAML is read, unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".plancal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
