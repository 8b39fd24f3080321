package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/korganrivera/kanban/internal/board"
	"github.com/korganrivera/kanban/internal/broadcast"
	"github.com/korganrivera/kanban/internal/model"
)

func newWIPCommand(cctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wip",
		Short: "Manage work-in-progress limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				limits, err := eng.WIPLimits()
				if err != nil {
					return err
				}
				if len(limits) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no limits set")
					return nil
				}
				states := make([]string, 0, len(limits))
				for s := range limits {
					states = append(states, s)
				}
				sort.Strings(states)
				rows := make([][]string, 0, len(states))
				for _, s := range states {
					limit := "-"
					if limits[s] != nil {
						limit = strconv.Itoa(*limits[s])
					}
					rows = append(rows, []string{s, limit})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"State", "Limit"}, rows, 2))
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <state> <limit>",
		Short: "Cap how many tasks a state may hold",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("limit must be a number: %w", err)
			}
			return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				if err := eng.SetWIPLimit(cmd.Context(), model.State(args[0]), &limit); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s limited to %d\n", args[0], limit)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <state>",
		Short: "Remove a state's limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withEngine(func(eng *board.Engine, _ *broadcast.Hub) error {
				if err := eng.SetWIPLimit(cmd.Context(), model.State(args[0]), nil); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s no longer limited\n", args[0])
				return nil
			})
		},
	})

	return cmd
}
