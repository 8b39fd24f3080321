package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/korganrivera/kanban/internal/ops"
	"github.com/korganrivera/kanban/internal/points"
)

func newBackupCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [archive-path]",
		Short: "Archive the data directory to a tar.gz",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			archive := fmt.Sprintf("kanban-backup-%s.tar.gz", time.Now().Format("20060102-150405"))
			if len(args) == 1 {
				archive = args[0]
			}
			if err := ops.BackupDataDir(cfg.DataDir, archive); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backed up %s to %s\n", cfg.DataDir, archive)
			return nil
		},
	}
}

func newRestoreCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <archive-path>",
		Short: "Unpack a backup into the data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := ops.RestoreDataDir(args[0], cfg.DataDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s into %s\n", args[0], cfg.DataDir)
			return nil
		},
	}
}

func newPointsCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "points",
		Short: "Show points earned per user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withLedger(func(ledger *points.FileLedger) error {
				balances := ledger.Balances()
				if len(balances) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no points earned yet")
					return nil
				}
				rows := make([][]string, 0, len(balances))
				for _, b := range balances {
					rows = append(rows, []string{b.User, strconv.Itoa(b.Points)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"User", "Points"}, rows, 2))
				return nil
			})
		},
	}
}
