package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/korganrivera/kanban/internal/board"
	"github.com/korganrivera/kanban/internal/broadcast"
	"github.com/korganrivera/kanban/internal/model"
)

func newDepCommand(cctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage task dependencies",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <task-id> <depends-on-id>",
		Short: "Make a task depend on another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				t, err := eng.AddDependency(cmd.Context(), model.TaskID(args[0]), model.TaskID(args[1]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s now depends on %s\n", t.ID, args[1])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <task-id> <depends-on-id>",
		Short: "Remove a dependency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				t, err := eng.RemoveDependency(cmd.Context(), model.TaskID(args[0]), model.TaskID(args[1]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s no longer depends on %s\n", t.ID, args[1])
				return nil
			})
		},
	})

	return cmd
}
