package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewStatsCmd(stats func() *internal.StatsUseCase) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file...]",
		Short: "Show category and solution counts per store",
		RunE:  makeStatsRunner(stats),
	}
}

func makeStatsRunner(stats func() *internal.StatsUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		out, err := stats().Execute(cmd.Context(), internal.StatsInput{Paths: args})
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		if len(out.Files) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stores found.")
			return nil
		}
		for _, f := range out.Files {
			if f.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: error: %s\n", f.Path, f.Error)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d categories, %d solutions, %.3f MB\n",
				f.Path, f.Categories, f.TotalSolutions, f.SizeMB)
		}
		return nil
	}
}
