package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.NotEmpty(t, c.DataDir)
	assert.Equal(t, "info", c.Logging.Level)
	assert.Equal(t, 30, c.Scoring.WindowDays)
	assert.Equal(t, 0.5, c.Scoring.Decay)
	assert.Equal(t, 0.4, c.Scoring.UrgencyWeight)
	assert.Equal(t, 0.6, c.Scoring.ImportanceWeight)
	assert.Equal(t, 15*time.Minute, c.Recompute.Interval())
	assert.Nil(t, c.WIP.InProgress)
}

func TestLoad_FileValuesWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `data_dir: /tmp/kanban-test
user: morgan
logging:
  level: debug
  format: json
scoring:
  window_days: 14
  decay: 0.25
recompute:
  interval_seconds: 300
wip:
  in_progress: 3
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/kanban-test", c.DataDir)
	assert.Equal(t, "morgan", c.User)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, 14, c.Scoring.WindowDays)
	assert.Equal(t, 0.25, c.Scoring.Decay)
	assert.Equal(t, 5*time.Minute, c.Recompute.Interval())
	require.NotNil(t, c.WIP.InProgress)
	assert.Equal(t, 3, *c.WIP.InProgress)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user: morgan\n"), 0o644))

	t.Setenv("KANBAN_USER", "casey")
	t.Setenv("KANBAN_SCORING_WINDOW_DAYS", "7")
	t.Setenv("KANBAN_RECOMPUTE_INTERVAL", "90")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "casey", c.User)
	assert.Equal(t, 7, c.Scoring.WindowDays)
	assert.Equal(t, 90*time.Second, c.Recompute.Interval())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	c := &Config{}
	c.ApplyDefaults()
	c.Scoring.Decay = 1.5
	assert.Error(t, c.Validate())

	c = &Config{}
	c.ApplyDefaults()
	zero := 0
	c.WIP.InProgress = &zero
	assert.Error(t, c.Validate())
}
