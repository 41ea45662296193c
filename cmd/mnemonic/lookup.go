package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewLookupCmd(lookup func() *internal.LookupUseCase) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <category> <problem>",
		Short: "Show the recorded solution for a problem",
		Long: `Search the project and the global store for a problem. When both hold it,
a recent project solution wins, then the newer one, then the more used one.`,
		Args: cobra.ExactArgs(2),
		RunE: makeLookupRunner(lookup),
	}
}

func makeLookupRunner(lookup func() *internal.LookupUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		out, err := lookup().Execute(cmd.Context(), internal.LookupInput{Category: args[0], Problem: args[1]})
		if err != nil {
			return fmt.Errorf("lookup: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"scope":        out.Scope.Type,
				"path":         out.Scope.Path,
				"solution":     out.Record.Solution,
				"created_date": out.Record.CreatedDate,
				"use_count":    out.Record.UseCount,
				"strategy":     out.Strategy,
				"reason":       out.Reason,
			})
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, out.Record.Solution)
		fmt.Fprintf(w, "(%s store, use count %d, %s)\n", out.Scope.Type, out.Record.UseCount, out.Reason)
		return nil
	}
}
