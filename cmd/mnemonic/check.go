package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewCheckCmd(maintenance func() *internal.MaintenanceService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate, report and prune every store",
		Long: `Run the consistency check: validate every store and the error categories,
report file sizes and statistics, then prune entries older than the maximum age.
Nothing is pruned when any file fails validation.`,
		Args: cobra.NoArgs,
		RunE: makeCheckRunner(maintenance),
	}

	cmd.Flags().Bool("dry-run", false, "Report what would be pruned without writing")
	cmd.Flags().Int("max-age", 0, "Prune entries older than this many days, 0 prunes everything dated before now (default from config)")
	return cmd
}

func makeCheckRunner(maintenance func() *internal.MaintenanceService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		maxAge, _ := cmd.Flags().GetInt("max-age")
		asJSON, _ := cmd.Flags().GetBool("json")

		if maxAge < 0 {
			return fmt.Errorf("--max-age must not be negative, got %d", maxAge)
		}

		in := internal.CheckInput{DryRun: dryRun}
		if cmd.Flags().Changed("max-age") {
			in.MaxAgeDays = &maxAge
		}
		out, err := maintenance().Check(cmd.Context(), in)
		if out != nil {
			if asJSON {
				if encErr := outputCheckJSON(cmd, out, dryRun); encErr != nil {
					return encErr
				}
			} else {
				printCheck(cmd, out, dryRun)
			}
		}
		if errors.Is(err, internal.ErrValidationFailed) {
			return err
		}
		if err != nil {
			return fmt.Errorf("check: %w", err)
		}
		return nil
	}
}

func printCheck(cmd *cobra.Command, out *internal.CheckOutput, dryRun bool) {
	w := cmd.OutOrStdout()
	printReports(cmd, out.Reports)

	paths := make([]string, 0, len(out.Pruned))
	for path := range out.Pruned {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		fmt.Fprintf(w, "pruned  %s: %d\n", path, out.Pruned[path])
	}

	verb := "Pruned"
	if dryRun {
		verb = "Would prune"
	}
	fmt.Fprintf(w, "%s %d entries\n", verb, out.TotalPruned)
}

func outputCheckJSON(cmd *cobra.Command, out *internal.CheckOutput, dryRun bool) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"reports":      reportsJSON(out.Reports),
		"stats":        out.Stats,
		"pruned":       out.Pruned,
		"total_pruned": out.TotalPruned,
		"dry_run":      dryRun,
	})
}
