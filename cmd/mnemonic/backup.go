package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewBackupCmd(backup func() *internal.BackupUseCase) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [file]",
		Short: "Snapshot a store and rotate old snapshots",
		Long: `Copy a store into its backup directory as a timestamped snapshot, then remove
snapshots beyond the retention count that are also older than the minimum age.`,
		Args: cobra.MaximumNArgs(1),
		RunE: makeBackupRunner(backup),
	}
}

func makeBackupRunner(backup func() *internal.BackupUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")

		var path string
		if len(args) > 0 {
			path = args[0]
		}

		out, err := backup().Execute(cmd.Context(), internal.BackupInput{Path: path, Scope: scopeHint})
		if err != nil {
			return fmt.Errorf("backup: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]string{"source": out.Source, "snapshot": out.Snapshot})
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Backed up %s to %s\n", out.Source, out.Snapshot)
		return nil
	}
}
