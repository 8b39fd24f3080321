package config

import (
	"os"
	"strconv"
)

// applyEnv overrides loaded values from KANBAN_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("KANBAN_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("KANBAN_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("KANBAN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("KANBAN_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := getEnvInt("KANBAN_SCORING_WINDOW_DAYS"); v > 0 {
		c.Scoring.WindowDays = v
	}
	if v := os.Getenv("KANBAN_SCORING_DECAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Scoring.Decay = f
		}
	}
	if v := getEnvInt("KANBAN_RECOMPUTE_INTERVAL"); v > 0 {
		c.Recompute.IntervalSeconds = v
	}
	if v := getEnvInt("KANBAN_WIP_IN_PROGRESS"); v > 0 {
		c.WIP.InProgress = &v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
