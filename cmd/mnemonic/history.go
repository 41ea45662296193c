package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewHistoryCmd(history func() *internal.HistoryUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "Show the commit history of a store",
		Long:  `Show the git commits that touched a store, newest first.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  makeHistoryRunner(history),
	}

	cmd.Flags().IntP("number", "n", 10, "Limit number of commits")
	cmd.Flags().Bool("oneline", false, "Show each commit on one line")
	return cmd
}

func makeHistoryRunner(history func() *internal.HistoryUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("number")
		oneline, _ := cmd.Flags().GetBool("oneline")
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")

		var path string
		if len(args) > 0 {
			path = args[0]
		}

		out, err := history().Execute(cmd.Context(), internal.HistoryInput{
			Path: path, Scope: scopeHint, Limit: limit,
		})
		if err != nil {
			return fmt.Errorf("get history: %w", err)
		}

		if asJSON {
			return outputCommitsJSON(cmd, out.Commits)
		}

		for _, c := range out.Commits {
			if oneline {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", shortHash(c.Hash), c.Message)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "commit %s\n", c.Hash)
				fmt.Fprintf(cmd.OutOrStdout(), "Author: %s\n", c.Author)
				fmt.Fprintf(cmd.OutOrStdout(), "Date:   %s\n\n", c.Timestamp.Format("Mon Jan 2 15:04:05 2006 -0700"))
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n\n", c.Message)
			}
		}
		return nil
	}
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func outputCommitsJSON(cmd *cobra.Command, commits []internal.CommitOutput) error {
	out := make([]map[string]any, 0, len(commits))
	for _, c := range commits {
		out = append(out, map[string]any{
			"hash":      c.Hash,
			"message":   c.Message,
			"author":    c.Author,
			"timestamp": c.Timestamp,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
