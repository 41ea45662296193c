package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <message...>",
		Short: "Print the category of an error message",
		Long:  `Classify an error message by keyword. Messages matching no category are "` + internal.CategoryUncategorised + `".`,
		Args:  cobra.ArbitraryArgs,
		RunE:  runClassify,
	}

	cmd.Flags().Bool("list", false, "List the known categories instead")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	list, _ := cmd.Flags().GetBool("list")
	asJSON, _ := cmd.Flags().GetBool("json")

	if list {
		for _, c := range internal.Categories() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("requires a message to classify")
	}

	message := strings.Join(args, " ")
	category := internal.Classify(message)

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{"message": message, "category": category})
	}

	fmt.Fprintln(cmd.OutOrStdout(), category)
	return nil
}
