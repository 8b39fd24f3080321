// Package config loads board configuration from YAML with env overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir   string          `yaml:"data_dir" json:"data_dir"`
	User      string          `yaml:"user" json:"user"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Scoring   ScoringConfig   `yaml:"scoring" json:"scoring"`
	Recompute RecomputeConfig `yaml:"recompute" json:"recompute"`
	WIP       WIPConfig       `yaml:"wip" json:"wip"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type ScoringConfig struct {
	WindowDays       int     `yaml:"window_days" json:"window_days"`
	Decay            float64 `yaml:"decay" json:"decay"`
	UrgencyWeight    float64 `yaml:"urgency_weight" json:"urgency_weight"`
	ImportanceWeight float64 `yaml:"importance_weight" json:"importance_weight"`
}

type RecomputeConfig struct {
	IntervalSeconds int `yaml:"interval_seconds" json:"interval_seconds"`
}

func (r RecomputeConfig) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

// WIPConfig seeds per-state limits on a brand new board. Limits on an
// existing board live in the board file and win over these.
type WIPConfig struct {
	InProgress *int `yaml:"in_progress" json:"in_progress,omitempty"`
	Blocked    *int `yaml:"blocked" json:"blocked,omitempty"`
	Suspended  *int `yaml:"suspended" json:"suspended,omitempty"`
}

func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.DataDir = filepath.Join(home, ".kanban")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Scoring.WindowDays == 0 {
		c.Scoring.WindowDays = 30
	}
	if c.Scoring.Decay == 0 {
		c.Scoring.Decay = 0.5
	}
	if c.Scoring.UrgencyWeight == 0 && c.Scoring.ImportanceWeight == 0 {
		c.Scoring.UrgencyWeight = 0.4
		c.Scoring.ImportanceWeight = 0.6
	}
	if c.Recompute.IntervalSeconds == 0 {
		c.Recompute.IntervalSeconds = 15 * 60
	}
}

func (c *Config) Validate() error {
	if c.Scoring.WindowDays < 1 {
		return fmt.Errorf("scoring.window_days must be at least 1, got %d", c.Scoring.WindowDays)
	}
	if c.Scoring.Decay < 0 || c.Scoring.Decay > 1 {
		return fmt.Errorf("scoring.decay must be in [0, 1], got %g", c.Scoring.Decay)
	}
	if c.Scoring.UrgencyWeight < 0 || c.Scoring.ImportanceWeight < 0 {
		return fmt.Errorf("scoring weights must not be negative")
	}
	if c.Recompute.IntervalSeconds < 1 {
		return fmt.Errorf("recompute.interval_seconds must be at least 1, got %d", c.Recompute.IntervalSeconds)
	}
	for _, l := range []struct {
		name  string
		limit *int
	}{
		{"wip.in_progress", c.WIP.InProgress},
		{"wip.blocked", c.WIP.Blocked},
		{"wip.suspended", c.WIP.Suspended},
	} {
		if l.limit != nil && *l.limit < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", l.name, *l.limit)
		}
	}
	return nil
}

// Load reads a config file, fills defaults, applies env overrides and
// validates. A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}
	c.ApplyDefaults()
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
