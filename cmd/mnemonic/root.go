package main

import (
	"fmt"
	"os"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mnemonic",
		Short:         "Maintain the lessons-learned YAML stores",
		Long:          `Validate, prune, back up and extend the structured memory stores, and watch the logs around them.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	setHelpWithPlugins(rootCmd)

	if a != nil {
		rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		}
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (default ./mnemonic.yaml)")
	cmd.PersistentFlags().String("scope", "", "Target store (global|project)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command, a *app) {
	svc := a.services

	maintenance := func() *internal.MaintenanceService { return svc().Maintenance }
	monitor := func() *internal.MonitorService { return svc().Monitor }
	add := func() *internal.AddSolutionUseCase {
		s := svc()
		return internal.NewAddSolutionUseCase(s.Scopes, s.Updater)
	}
	validate := func() *internal.ValidateUseCase {
		s := svc()
		return internal.NewValidateUseCase(s.Validator, s.Scopes, s.Config.Store.ErrorCategories)
	}
	backup := func() *internal.BackupUseCase {
		s := svc()
		return internal.NewBackupUseCase(s.Scopes, s.Backups)
	}
	diff := func() *internal.DiffUseCase {
		s := svc()
		return internal.NewDiffUseCase(s.Scopes, s.Backups)
	}
	stats := func() *internal.StatsUseCase { return internal.NewStatsUseCase(svc().Scopes, a.now) }
	watchTargets := func() []string {
		cfg := svc().Config
		return append(append([]string{}, cfg.Store.Files...), cfg.Store.ErrorCategories)
	}
	lookup := func() *internal.LookupUseCase { return internal.NewLookupUseCase(svc().Scopes, a.now) }
	history := func() *internal.HistoryUseCase { return internal.NewHistoryUseCase(svc().Scopes) }
	install := func() *internal.InstallHookUseCase { return internal.NewInstallHookUseCase(svc().Logger) }
	uninstall := func() *internal.UninstallHookUseCase { return internal.NewUninstallHookUseCase(svc().Logger) }

	root.AddCommand(
		NewCheckCmd(maintenance),
		NewAddCmd(add),
		NewLookupCmd(lookup),
		NewClassifyCmd(),
		NewValidateCmd(validate),
		NewBackupCmd(backup),
		NewDiffCmd(diff),
		NewStatsCmd(stats),
		NewMonitorCmd(monitor),
		NewWatchCmd(watchTargets, validate),
		NewHistoryCmd(history),
		NewInstallCmd(install),
		NewUninstallCmd(uninstall),
	)
}

func setHelpWithPlugins(cmd *cobra.Command) {
	defaultHelp := cmd.HelpFunc()

	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		defaultHelp(c, args)
		printPlugins(c)
	})
}

func printPlugins(cmd *cobra.Command) {
	plugins := discoverPlugins(os.Getenv("PATH"))
	if len(plugins) == 0 {
		return
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "\nPlugins (mnemonic-* on PATH):")
	for _, p := range plugins {
		fmt.Fprintf(w, "  %-12s %s\n", p.Name, p.Path)
	}
}
