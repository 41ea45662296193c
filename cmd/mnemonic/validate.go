package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewValidateCmd(validate func() *internal.ValidateUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate stores and the error categories file",
		Long: `Check that each file parses and follows the store schema. Without arguments
every configured store and the error categories file are checked.
Exits non-zero when any file is invalid.`,
		RunE: makeValidateRunner(validate),
	}

	cmd.Flags().Bool("allow-missing", false, "Report files that do not exist as warnings")
	return cmd
}

func makeValidateRunner(validate func() *internal.ValidateUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		allowMissing, _ := cmd.Flags().GetBool("allow-missing")

		out, err := validate().Execute(cmd.Context(), internal.ValidateInput{
			Paths:        args,
			AllowMissing: allowMissing,
		})
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}

		if asJSON {
			if err := outputReportsJSON(cmd, out.Reports); err != nil {
				return err
			}
		} else {
			printReports(cmd, out.Reports)
		}

		if !out.Valid() {
			return internal.ErrValidationFailed
		}
		return nil
	}
}

func printReports(cmd *cobra.Command, reports []*internal.Report) {
	w := cmd.OutOrStdout()
	for _, r := range reports {
		if r.Valid() {
			fmt.Fprintf(w, "ok      %s\n", r.Path)
		} else {
			fmt.Fprintf(w, "invalid %s\n", r.Path)
			for _, e := range r.Errors {
				fmt.Fprintf(w, "        %v\n", e)
			}
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "        warning: %s\n", warning)
		}
	}
}

func outputReportsJSON(cmd *cobra.Command, reports []*internal.Report) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(reportsJSON(reports))
}

func reportsJSON(reports []*internal.Report) []map[string]any {
	out := make([]map[string]any, 0, len(reports))
	for _, r := range reports {
		errs := make([]string, 0, len(r.Errors))
		for _, e := range r.Errors {
			errs = append(errs, e.Error())
		}
		out = append(out, map[string]any{
			"path":     r.Path,
			"valid":    r.Valid(),
			"errors":   errs,
			"warnings": r.Warnings,
		})
	}
	return out
}
