package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/korganrivera/kanban/internal/board"
	"github.com/korganrivera/kanban/internal/broadcast"
	"github.com/korganrivera/kanban/internal/model"
	"github.com/korganrivera/kanban/internal/telemetry"
)

const activityWindow = 7 * 24 * time.Hour

func newStatusCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			err := cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				views, err := eng.Snapshot()
				if err != nil {
					return err
				}
				samples := make([]telemetry.TaskSample, 0, len(views))
				for _, v := range views {
					samples = append(samples, telemetry.TaskSample{
						State:     v.EffectiveState,
						Overdue:   v.Overdue,
						Deadlock:  v.Deadlock,
						Recurring: v.Recurrence != nil && !v.Recurrence.Paused,
						Priority:  v.Priority,
					})
				}
				stats := telemetry.BoardStats(samples)

				rows := [][]string{}
				for _, s := range []model.State{
					model.StateReady, model.StateWaiting, model.StateInProgress,
					model.StateBlocked, model.StateSuspended, model.StateDone,
				} {
					if stats.ByState[s] == 0 {
						continue
					}
					rows = append(rows, []string{string(s), strconv.Itoa(stats.ByState[s])})
				}
				fmt.Fprintln(out, renderTable([]string{"State", "Tasks"}, rows, 2))

				fmt.Fprintf(out, "%d tasks, %d actionable, %d overdue, %d deadlocked, %d recurring\n",
					stats.Tasks, stats.Actionable, stats.Overdue, stats.Deadlocked, stats.Recurring)
				if stats.Tasks > 0 {
					fmt.Fprintf(out, "top priority %d, average %.1f\n",
						stats.TopPriority, stats.AveragePriority)
				}
				return nil
			})
			if err != nil {
				return err
			}

			return cctx.withTelemetry(func(events *telemetry.FileRepository) error {
				since := time.Now().Add(-activityWindow)
				recorded, err := events.GetEvents(since, nil)
				if err != nil {
					return err
				}
				counts := telemetry.EventStats(recorded, since)
				if len(counts) == 0 {
					return nil
				}
				types := make([]string, 0, len(counts))
				for t := range counts {
					types = append(types, string(t))
				}
				sort.Strings(types)
				fmt.Fprintln(out, "activity, last 7 days:")
				for _, t := range types {
					fmt.Fprintf(out, "  %-20s %d\n", t, counts[telemetry.EventType(t)])
				}
				return nil
			})
		},
	}
}
