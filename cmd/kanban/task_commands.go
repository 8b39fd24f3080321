package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/korganrivera/kanban/internal/board"
	"github.com/korganrivera/kanban/internal/broadcast"
	"github.com/korganrivera/kanban/internal/model"
)

func newAddCommand(cctx *commandContext) *cobra.Command {
	var (
		description string
		due         string
		deadline    string
		leadDays    int
		deps        []string
		remedyFor   string
		every       int
		anchoredOn  string
		rolling     bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := board.CreateRequest{
				Title:        strings.Join(args, " "),
				Description:  description,
				LeadTimeDays: leadDays,
				RemedyFor:    model.TaskID(remedyFor),
			}
			for _, d := range deps {
				req.DependsOn = append(req.DependsOn, model.TaskID(d))
			}
			if due != "" {
				t, err := parseWhen(due)
				if err != nil {
					return err
				}
				req.DueAt = &t
			}
			if deadline != "" {
				t, err := parseWhen(deadline)
				if err != nil {
					return err
				}
				req.Deadline = &t
			}

			switch {
			case rolling && anchoredOn != "":
				return fmt.Errorf("--rolling and --on are mutually exclusive")
			case rolling:
				if every <= 0 {
					return fmt.Errorf("--rolling needs --every <days>")
				}
				req.Recurrence = &model.Recurrence{Type: model.RecurrenceRolling, IntervalDays: every}
			case anchoredOn != "":
				days, err := parseWeekdays(anchoredOn)
				if err != nil {
					return err
				}
				req.Recurrence = &model.Recurrence{Type: model.RecurrenceAnchored, Weekdays: days}
			case every > 0:
				req.Recurrence = &model.Recurrence{Type: model.RecurrenceAnchored, IntervalDays: every}
			}

			return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				t, err := eng.CreateTask(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (priority %d)\n", t.ID, t.Priority)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&due, "due", "", "Due time (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Hard deadline")
	cmd.Flags().IntVar(&leadDays, "lead", 0, "Days before due the task becomes workable")
	cmd.Flags().StringSliceVar(&deps, "needs", nil, "Task ids this task depends on")
	cmd.Flags().StringVar(&remedyFor, "remedy-for", "", "Task this one remedies")
	cmd.Flags().IntVar(&every, "every", 0, "Recur every N days")
	cmd.Flags().StringVar(&anchoredOn, "on", "", "Recur on weekdays, e.g. mon,thu")
	cmd.Flags().BoolVar(&rolling, "rolling", false, "Reschedule from completion instead of the calendar")

	return cmd
}

func newListCommand(cctx *commandContext) *cobra.Command {
	var all bool
	var stateFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks ordered by priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				views, err := eng.Snapshot()
				if err != nil {
					return err
				}

				filtered := views[:0]
				for _, v := range views {
					if !all && stateFilter == "" && v.EffectiveState == model.StateDone {
						continue
					}
					if stateFilter != "" && string(v.EffectiveState) != stateFilter {
						continue
					}
					filtered = append(filtered, v)
				}
				sort.SliceStable(filtered, func(i, j int) bool {
					if filtered[i].Priority != filtered[j].Priority {
						return filtered[i].Priority > filtered[j].Priority
					}
					return filtered[i].ID < filtered[j].ID
				})

				rows := make([][]string, 0, len(filtered))
				for _, v := range filtered {
					rows = append(rows, []string{
						string(v.ID),
						truncate(v.Title, 40),
						formatState(v),
						strconv.Itoa(v.Priority),
						strconv.Itoa(v.Urgency),
						formatTime(v.DueAt),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "State", "Priority", "Urgency", "Due"},
					rows, 4, 5))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include done tasks")
	cmd.Flags().StringVar(&stateFilter, "state", "", "Only tasks in this effective state")

	return cmd
}

func newShowCommand(cctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				views, err := eng.Snapshot()
				if err != nil {
					return err
				}
				v, ok := findView(views, model.TaskID(args[0]))
				if !ok {
					return fmt.Errorf("task %s: %w", args[0], board.ErrNotFound)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s  %s\n", v.ID, v.Title)
				if v.Description != "" {
					fmt.Fprintf(out, "  %s\n", v.Description)
				}
				fmt.Fprintf(out, "  state:      %s (stored %s)\n", formatState(v), v.State)
				fmt.Fprintf(out, "  priority:   %d (urgency %d, importance pct %d, raw %.2f)\n",
					v.Priority, v.Urgency, v.ImportancePct, v.ImportanceRaw)
				fmt.Fprintf(out, "  due:        %s\n", formatTime(v.DueAt))
				if v.Deadline != nil {
					fmt.Fprintf(out, "  deadline:   %s\n", formatTime(v.Deadline))
				}
				if v.ReadyAt != nil {
					fmt.Fprintf(out, "  ready at:   %s\n", formatTime(v.ReadyAt))
				}
				if len(v.DependsOn) > 0 {
					parts := make([]string, 0, len(v.DependsOn))
					for _, d := range v.DependsOn {
						parts = append(parts, string(d))
					}
					fmt.Fprintf(out, "  depends on: %s\n", strings.Join(parts, ", "))
				}
				if v.Recurrence != nil {
					fmt.Fprintf(out, "  recurs:     %s\n", describeRecurrence(v.Recurrence))
				}
				if v.RemedyFor != "" {
					fmt.Fprintf(out, "  remedy for: %s\n", v.RemedyFor)
				}
				if v.Picker != "" {
					fmt.Fprintf(out, "  picked by:  %s at %s (worth %d)\n",
						v.Picker, formatTime(v.PickedAt), v.PointsSnapshot)
				}
				for _, h := range v.History {
					line := h.Event
					if h.Detail != "" {
						line += ": " + h.Detail
					}
					fmt.Fprintf(out, "  %s  %s\n", h.At.Local().Format("2006-01-02 15:04"), line)
				}
				return nil
			})
		},
	}
	return cmd
}

func describeRecurrence(r *model.Recurrence) string {
	var s string
	switch {
	case r.Type == model.RecurrenceRolling:
		s = fmt.Sprintf("every %d days after completion", r.IntervalDays)
	case len(r.Weekdays) > 0:
		names := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
		parts := make([]string, 0, len(r.Weekdays))
		for _, d := range r.Weekdays {
			if d >= 0 && d <= 6 {
				parts = append(parts, names[d])
			}
		}
		s = "on " + strings.Join(parts, ",")
	default:
		s = fmt.Sprintf("every %d days", r.IntervalDays)
	}
	if r.Paused {
		s += " (paused)"
	}
	return s
}

func newEditCommand(cctx *commandContext) *cobra.Command {
	var (
		title         string
		description   string
		due           string
		clearDue      bool
		deadline      string
		clearDeadline bool
		leadDays      int
		pauseRecur    bool
		resumeRecur   bool
	)

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.TaskID(args[0])
			var p board.Patch

			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			if cmd.Flags().Changed("description") {
				p.Description = &description
			}
			if cmd.Flags().Changed("lead") {
				p.LeadTimeDays = &leadDays
			}
			switch {
			case clearDue:
				var none *time.Time
				p.DueAt = &none
			case due != "":
				t, err := parseWhen(due)
				if err != nil {
					return err
				}
				ptr := &t
				p.DueAt = &ptr
			}
			switch {
			case clearDeadline:
				var none *time.Time
				p.Deadline = &none
			case deadline != "":
				t, err := parseWhen(deadline)
				if err != nil {
					return err
				}
				ptr := &t
				p.Deadline = &ptr
			}

			return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				if pauseRecur || resumeRecur {
					if err := setRecurrencePaused(cmd, eng, id, pauseRecur); err != nil {
						return err
					}
				}
				t, err := eng.EditTask(cmd.Context(), id, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s (priority %d)\n", t.ID, t.Priority)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&due, "due", "", "New due time")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due time")
	cmd.Flags().StringVar(&deadline, "deadline", "", "New hard deadline")
	cmd.Flags().BoolVar(&clearDeadline, "clear-deadline", false, "Remove the deadline")
	cmd.Flags().IntVar(&leadDays, "lead", 0, "New lead time in days")
	cmd.Flags().BoolVar(&pauseRecur, "pause-recurrence", false, "Stop the task from rescheduling")
	cmd.Flags().BoolVar(&resumeRecur, "resume-recurrence", false, "Resume rescheduling")

	return cmd
}

func setRecurrencePaused(cmd *cobra.Command, eng *board.Engine, id model.TaskID, paused bool) error {
	views, err := eng.Snapshot()
	if err != nil {
		return err
	}
	v, ok := findView(views, id)
	if !ok {
		return fmt.Errorf("task %s: %w", id, board.ErrNotFound)
	}
	if v.Recurrence == nil {
		return fmt.Errorf("task %s has no recurrence: %w", id, board.ErrValidation)
	}
	r := *v.Recurrence
	r.Paused = paused
	ptr := &r
	_, err = eng.EditTask(cmd.Context(), id, board.Patch{Recurrence: &ptr})
	return err
}

func newRemoveCommand(cctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task and the dependencies only it needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.TaskID(args[0])
			return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				res, err := eng.DeleteTask(cmd.Context(), id, force)
				if err != nil {
					var conflict *board.DeleteConflictError
					if errors.As(err, &conflict) {
						parts := make([]string, 0, len(conflict.Dependents))
						for _, d := range conflict.Dependents {
							parts = append(parts, string(d))
						}
						return fmt.Errorf("%s is needed by %s; re-run with --force to delete anyway",
							id, strings.Join(parts, ", "))
					}
					return err
				}

				out := cmd.OutOrStdout()
				for _, d := range res.Deleted {
					fmt.Fprintf(out, "deleted %s\n", d)
				}
				for _, k := range res.Kept {
					fmt.Fprintf(out, "kept %s (still needed elsewhere)\n", k)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if other tasks depend on it")
	return cmd
}
