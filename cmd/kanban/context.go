package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/korganrivera/kanban/internal/board"
	"github.com/korganrivera/kanban/internal/broadcast"
	"github.com/korganrivera/kanban/internal/config"
	"github.com/korganrivera/kanban/internal/logging"
	"github.com/korganrivera/kanban/internal/model"
	"github.com/korganrivera/kanban/internal/points"
	"github.com/korganrivera/kanban/internal/schedule"
	"github.com/korganrivera/kanban/internal/store"
	"github.com/korganrivera/kanban/internal/telemetry"
)

type commandContext struct {
	configFlag  *string
	dataDirFlag *string
	userFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	logger  *slog.Logger
}

func newCommandContext(configFlag, dataDirFlag, userFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		dataDirFlag: dataDirFlag,
		userFlag:    userFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.dataDirFlag != nil && strings.TrimSpace(*c.dataDirFlag) != "" {
			cfg.DataDir = strings.TrimSpace(*c.dataDirFlag)
		}
		if c.userFlag != nil && strings.TrimSpace(*c.userFlag) != "" {
			cfg.User = strings.TrimSpace(*c.userFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) user() string {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.User == "" {
		return "default"
	}
	return cfg.User
}

// withEngine builds the full stack (store, ledger, hub, engine) around the
// configured data directory, runs fn, and shuts the engine down.
func (c *commandContext) withEngine(fn func(*board.Engine, *broadcast.Hub) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return err
	}
	ledger, err := points.NewFileLedger(cfg.DataDir)
	if err != nil {
		return err
	}
	events, err := telemetry.NewFileRepository(cfg.DataDir)
	if err != nil {
		return err
	}
	hub := broadcast.NewHub()

	eng := board.New(board.Options{
		Store:       st,
		Clock:       board.RealClock{},
		IDs:         board.UUIDGenerator{},
		Ledger:      ledger,
		Broadcaster: hub,
		Events:      events,
		Scoring: schedule.Config{
			WindowDays:       cfg.Scoring.WindowDays,
			Decay:            cfg.Scoring.Decay,
			UrgencyWeight:    cfg.Scoring.UrgencyWeight,
			ImportanceWeight: cfg.Scoring.ImportanceWeight,
		},
		Logger: c.ensureLogger(),
	})
	defer eng.Close()

	if err := seedWIPLimits(eng, cfg); err != nil {
		return err
	}
	return fn(eng, hub)
}

func (c *commandContext) withTelemetry(fn func(*telemetry.FileRepository) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	events, err := telemetry.NewFileRepository(cfg.DataDir)
	if err != nil {
		return err
	}
	return fn(events)
}

func (c *commandContext) withLedger(fn func(*points.FileLedger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	ledger, err := points.NewFileLedger(cfg.DataDir)
	if err != nil {
		return err
	}
	return fn(ledger)
}

// seedWIPLimits applies configured limits to a brand new board. A board
// that already has tasks or limits keeps what it has; `wip set` and
// `wip clear` stay authoritative after that.
func seedWIPLimits(eng *board.Engine, cfg *config.Config) error {
	views, err := eng.Snapshot()
	if err != nil {
		return err
	}
	current, err := eng.WIPLimits()
	if err != nil {
		return err
	}
	if len(views) > 0 || len(current) > 0 {
		return nil
	}

	seeds := []struct {
		state model.State
		limit *int
	}{
		{model.StateInProgress, cfg.WIP.InProgress},
		{model.StateBlocked, cfg.WIP.Blocked},
		{model.StateSuspended, cfg.WIP.Suspended},
	}
	for _, s := range seeds {
		if s.limit == nil {
			continue
		}
		limit := *s.limit
		if err := eng.SetWIPLimit(context.Background(), s.state, &limit); err != nil {
			return err
		}
	}
	return nil
}
