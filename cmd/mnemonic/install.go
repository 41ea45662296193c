package main

import (
	"fmt"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewInstallCmd(install func() *internal.InstallHookUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [dir]",
		Short: "Install a pre-commit hook that validates the stores",
		Long: `Install a git pre-commit hook that runs "mnemonic validate" so commits with
broken stores are rejected. An existing foreign hook is kept unless --force
is given, in which case it is moved aside and restored on uninstall.`,
		Args: cobra.MaximumNArgs(1),
		RunE: makeInstallRunner(install),
	}

	cmd.Flags().Bool("force", false, "Overwrite existing hook (backs up original)")
	return cmd
}

func makeInstallRunner(install func() *internal.InstallHookUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		var dir string
		if len(args) > 0 {
			dir = args[0]
		}

		out, err := install().Execute(cmd.Context(), internal.InstallHookInput{Dir: dir, Force: force})
		if err != nil {
			return err
		}

		if out.BackedUp != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Moved existing hook to %s\n", out.BackedUp)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed %s hook at %s\n", internal.HookType, out.Path)
		return nil
	}
}
