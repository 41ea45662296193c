package main

import (
	"context"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/spf13/cobra"
)

const pluginPrefix = "mnemonic-"

// plugin is an executable named mnemonic-<name> found on PATH and run as
// `mnemonic <name> [args]`.
type plugin struct {
	Name string
	Path string
}

// pluginFor returns the plugin that args dispatch to. Built-in commands and
// flags never dispatch.
func pluginFor(root *cobra.Command, args []string) (plugin, bool) {
	if len(args) == 0 || args[0] == "" || strings.HasPrefix(args[0], "-") {
		return plugin{}, false
	}
	if c, _, err := root.Find(args); err == nil && c != root {
		return plugin{}, false
	}

	path, err := exec.LookPath(pluginPrefix + args[0])
	if err != nil {
		return plugin{}, false
	}
	return plugin{Name: args[0], Path: path}, true
}

// discoverPlugins lists the plugins in the directories of pathList, sorted by
// name. A directory earlier in the list shadows later ones.
func discoverPlugins(pathList string) []plugin {
	var found []plugin
	for _, dir := range filepath.SplitList(pathList) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name, ok := strings.CutPrefix(e.Name(), pluginPrefix)
			if !ok || name == "" {
				continue
			}
			if slices.ContainsFunc(found, func(p plugin) bool { return p.Name == name }) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if isExecutable(path) {
				found = append(found, plugin{Name: name, Path: path})
			}
		}
	}
	slices.SortFunc(found, func(a, b plugin) int { return strings.Compare(a.Name, b.Name) })
	return found
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

func (p plugin) run(ctx context.Context, args, env []string) error {
	c := exec.CommandContext(ctx, p.Path, args...)
	c.Env = env
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	return c.Run()
}

// pluginEnv is the caller's environment plus what a plugin needs to call back
// into mnemonic: its binary, version, working directory and config file. An
// MNEMONIC_CONFIG set by the caller wins.
func pluginEnv(version string) []string {
	bin, _ := os.Executable()
	cwd, _ := os.Getwd()

	vars := map[string]string{
		"MNEMONIC_BIN":     bin,
		"MNEMONIC_ROOT":    cwd,
		"MNEMONIC_VERSION": version,
	}
	if v, ok := os.LookupEnv("MNEMONIC_CONFIG"); !ok || v == "" {
		vars["MNEMONIC_CONFIG"] = filepath.Join(cwd, internal.DefaultConfigName+".yaml")
	}

	env := os.Environ()
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		env = append(env, k+"="+vars[k])
	}
	return env
}
