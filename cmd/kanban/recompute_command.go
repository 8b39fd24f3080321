package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/korganrivera/kanban/internal/board"
	"github.com/korganrivera/kanban/internal/broadcast"
)

func newRecomputeCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Refresh derived states and scores once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				if err := eng.Recompute(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "recomputed")
				return nil
			})
		},
	}
}

func newDaemonCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the periodic recompute loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			return cctx.withEngine(func(eng *board.Engine, hub *broadcast.Hub) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				logger := cctx.ensureLogger()
				updates, cancel := hub.Subscribe()
				defer cancel()
				go func() {
					for views := range updates {
						overdue := 0
						for _, v := range views {
							if v.Overdue {
								overdue++
							}
						}
						logger.Info("board updated", "tasks", len(views), "overdue", overdue)
					}
				}()

				logger.Info("recompute loop started",
					"interval", cfg.Recompute.Interval(), "data_dir", cfg.DataDir)
				eng.RunRecomputeLoop(ctx, cfg.Recompute.Interval())
				return nil
			})
		},
	}
}
