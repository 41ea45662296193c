package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func NewWatchCmd(targets func() []string, validate func() *internal.ValidateUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Revalidate stores whenever they change",
		Long:  `Watch the stores and the error categories file and validate each one again after it changes.`,
		Args:  cobra.NoArgs,
		RunE:  makeWatchRunner(targets, validate),
	}

	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func makeWatchRunner(targets func() []string, validate func() *internal.ValidateUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")

		watched, err := watchedFiles(targets())
		if err != nil {
			return err
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := addWatchDirs(watcher, watched); err != nil {
			return fmt.Errorf("add watch dirs: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %d files for changes...\n", len(watched))

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		changed := make(map[string]bool)

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if shouldIgnoreEvent(event, watched) {
					continue
				}
				if len(changed) == 0 {
					timer.Reset(debounce)
				}
				changed[filepath.Clean(event.Name)] = true
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
			case <-timer.C:
				paths := make([]string, 0, len(changed))
				for path := range changed {
					paths = append(paths, path)
				}
				sort.Strings(paths)
				clear(changed)

				out, err := validate().Execute(cmd.Context(), internal.ValidateInput{Paths: paths})
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "validate: %v\n", err)
					continue
				}
				printReports(cmd, out.Reports)
			}
		}
	}
}

// watchedFiles resolves targets to absolute paths so they compare equal to
// the event names of their watched directories.
func watchedFiles(targets []string) (map[string]bool, error) {
	watched := make(map[string]bool, len(targets))
	for _, t := range targets {
		if t == "" {
			continue
		}
		abs, err := filepath.Abs(t)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", t, err)
		}
		watched[abs] = true
	}
	return watched, nil
}

// addWatchDirs watches the parent directory of each file. Stores are
// replaced by rename, which a watch on the file itself would not survive.
func addWatchDirs(watcher *fsnotify.Watcher, files map[string]bool) error {
	dirs := make(map[string]bool)
	for f := range files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	return nil
}

func shouldIgnoreEvent(event fsnotify.Event, watched map[string]bool) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}
	return !watched[filepath.Clean(event.Name)]
}
