package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/korganrivera/kanban/internal/board"
	"github.com/korganrivera/kanban/internal/broadcast"
	"github.com/korganrivera/kanban/internal/model"
)

func newStateCommands(cctx *commandContext) []*cobra.Command {
	specs := []struct {
		use    string
		short  string
		target model.State
		report func(*model.Task) string
	}{
		{
			use:    "start <task-id>",
			short:  "Claim a task and start working on it",
			target: model.StateInProgress,
			report: func(t *model.Task) string {
				return fmt.Sprintf("started %s (worth %d points)", t.ID, t.PointsSnapshot)
			},
		},
		{
			use:    "block <task-id>",
			short:  "Mark a task blocked on something external",
			target: model.StateBlocked,
			report: func(t *model.Task) string { return fmt.Sprintf("blocked %s", t.ID) },
		},
		{
			use:    "suspend <task-id>",
			short:  "Shelve a task",
			target: model.StateSuspended,
			report: func(t *model.Task) string { return fmt.Sprintf("suspended %s", t.ID) },
		},
		{
			use:    "done <task-id>",
			short:  "Complete a task",
			target: model.StateDone,
			report: func(t *model.Task) string {
				if t.State != model.StateDone {
					// Recurrence already rescheduled it.
					return fmt.Sprintf("done; %s comes back due %s", t.ID, formatTime(t.DueAt))
				}
				return fmt.Sprintf("done %s", t.ID)
			},
		},
		{
			use:    "reopen <task-id>",
			short:  "Put a done task back on the board",
			target: model.StateReady,
			report: func(t *model.Task) string { return fmt.Sprintf("reopened %s", t.ID) },
		},
	}

	cmds := make([]*cobra.Command, 0, len(specs))
	for _, spec := range specs {
		spec := spec
		cmds = append(cmds, &cobra.Command{
			Use:   spec.use,
			Short: spec.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id := model.TaskID(args[0])
				return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
					t, err := eng.SetState(cmd.Context(), id, spec.target, cctx.user())
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), spec.report(t))
					return nil
				})
			},
		})
	}
	return cmds
}
