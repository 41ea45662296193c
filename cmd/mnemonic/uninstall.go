package main

import (
	"fmt"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewUninstallCmd(uninstall func() *internal.UninstallHookUseCase) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall [dir]",
		Short: "Remove the mnemonic git hook",
		Long:  `Remove the pre-commit hook installed by mnemonic. Restores any backed-up original hook.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  makeUninstallRunner(uninstall),
	}
}

func makeUninstallRunner(uninstall func() *internal.UninstallHookUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var dir string
		if len(args) > 0 {
			dir = args[0]
		}

		out, err := uninstall().Execute(cmd.Context(), internal.UninstallHookInput{Dir: dir})
		if err != nil {
			return err
		}

		if out.Restored {
			fmt.Fprintln(cmd.OutOrStdout(), "Restored original hook")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled %s hook\n", internal.HookType)
		return nil
	}
}
