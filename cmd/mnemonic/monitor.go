package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

var errIssuesFound = errors.New("issues found")

func NewMonitorCmd(monitor func() *internal.MonitorService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Scan logs, check server health and alert on findings",
		Long: `Scan the configured log files for recent errors, check the server health
endpoint and check file sizes. Findings are sent as one email alert when
alerting is enabled. Exits non-zero when errors or health issues were found.`,
		Args: cobra.NoArgs,
		RunE: makeMonitorRunner(monitor),
	}

	cmd.Flags().Bool("test-alert", false, "Send a test alert and exit")
	return cmd
}

func makeMonitorRunner(monitor func() *internal.MonitorService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		testAlert, _ := cmd.Flags().GetBool("test-alert")
		asJSON, _ := cmd.Flags().GetBool("json")

		svc := monitor()
		if testAlert {
			if !svc.TestAlert(cmd.Context()) {
				return errors.New("test alert was not sent")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test alert sent")
			return nil
		}

		report := svc.Run(cmd.Context())
		if asJSON {
			if err := outputMonitorJSON(cmd, report); err != nil {
				return err
			}
		} else {
			printMonitor(cmd, report)
		}

		if n := report.IssueCount(); n > 0 {
			return fmt.Errorf("%w: %d", errIssuesFound, n)
		}
		return nil
	}
}

func printMonitor(cmd *cobra.Command, r *internal.MonitorReport) {
	w := cmd.OutOrStdout()
	if !r.HasFindings() {
		fmt.Fprintln(w, "No issues detected.")
		return
	}

	for _, e := range r.Errors {
		fmt.Fprintf(w, "error   %s: %s\n", e.File, e.Line)
	}
	for _, issue := range r.HealthIssues {
		fmt.Fprintf(w, "health  %s\n", issue)
	}
	for _, warning := range r.SizeWarnings {
		fmt.Fprintf(w, "size    %s\n", warning)
	}

	status := "not sent"
	if r.AlertSent {
		status = "sent"
	}
	fmt.Fprintf(w, "Alert %s: %s\n", status, r.Subject)
}

func outputMonitorJSON(cmd *cobra.Command, r *internal.MonitorReport) error {
	errs := make([]map[string]any, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, map[string]any{
			"file":      e.File,
			"timestamp": e.Timestamp,
			"severity":  e.Severity,
			"line":      e.Line,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"errors":        errs,
		"health_issues": r.HealthIssues,
		"size_warnings": r.SizeWarnings,
		"subject":       r.Subject,
		"alert_sent":    r.AlertSent,
		"issue_count":   r.IssueCount(),
	})
}
