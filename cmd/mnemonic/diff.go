package main

import (
	"fmt"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewDiffCmd(diff func() *internal.DiffUseCase) *cobra.Command {
	return &cobra.Command{
		Use:   "diff [file]",
		Short: "Show changes since the latest snapshot",
		Long:  `Show a line diff between the newest backup snapshot of a store and its current content.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  makeDiffRunner(diff),
	}
}

func makeDiffRunner(diff func() *internal.DiffUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")

		var path string
		if len(args) > 0 {
			path = args[0]
		}

		out, err := diff().Execute(cmd.Context(), internal.DiffInput{Path: path, Scope: scopeHint})
		if err != nil {
			return fmt.Errorf("diff: %w", err)
		}

		if out.Diff == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "--- %s\n", out.Snapshot)
		fmt.Fprint(cmd.OutOrStdout(), out.Diff)
		return nil
	}
}
