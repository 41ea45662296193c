package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewAddCmd(add func() *internal.AddSolutionUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <problem> [category] <solution>",
		Short: "Record a solution for a problem",
		Long: `Record a solution in the selected store. Recording the same problem again
replaces its solution and bumps its use count. Without a category the
problem text is classified.

  mnemonic add "connection refused" "restart the proxy"
  mnemonic add "connection refused" networking "restart the proxy"`,
		Args: cobra.RangeArgs(2, 3),
		RunE: makeAddRunner(add),
	}

	cmd.Flags().StringP("category", "c", "", "Category (default: classified from the problem)")
	cmd.Flags().String("file", "", "Store file to write (overrides --scope)")
	return cmd
}

func makeAddRunner(add func() *internal.AddSolutionUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		file, _ := cmd.Flags().GetString("file")
		category, _ := cmd.Flags().GetString("category")
		asJSON, _ := cmd.Flags().GetBool("json")

		problem, argCategory, solution := splitAddArgs(args)
		if argCategory != "" {
			if category != "" && category != argCategory {
				return fmt.Errorf("category given twice: %q and %q", argCategory, category)
			}
			category = argCategory
		}

		out, err := add().Execute(cmd.Context(), internal.AddSolutionInput{
			Problem:  problem,
			Solution: solution,
			Category: category,
			Scope:    scopeHint,
			Path:     file,
		})
		if err != nil {
			return fmt.Errorf("add solution: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"path":            out.Path,
				"category":        out.Category,
				"problem":         problem,
				"use_count":       out.UseCount,
				"created_date":    out.CreatedDate,
				"total_solutions": out.TotalSolutions,
			})
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s/%s in %s (use count %d)\n",
			out.Category, problem, out.Path, out.UseCount)
		return nil
	}
}

// splitAddArgs accepts both "<problem> <category> <solution>" and
// "<problem> <solution> <category>". With three arguments the middle one is
// the category when it names a known category, otherwise the last one is.
func splitAddArgs(args []string) (problem, category, solution string) {
	problem = args[0]
	if len(args) == 2 {
		return problem, "", args[1]
	}
	if internal.KnownCategory(args[1]) {
		return problem, args[1], args[2]
	}
	return problem, args[2], args[1]
}
