package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/4thel00z/mnemonic/internal"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	defer a.close()
	rootCmd := NewRootCmd(version, a)

	if p, ok := pluginFor(rootCmd, os.Args[1:]); ok {
		if err := p.run(ctx, os.Args[2:], pluginEnv(version)); err != nil {
			fmt.Fprintf(os.Stderr, "mnemonic %s: %v\n", p.Name, err)
			a.close()
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(ctx, rootCmd); err != nil {
		a.close()
		os.Exit(1)
	}
}

// app builds the services once the root flags are parsed, since the
// config file location is itself a flag.
type app struct {
	now    func() time.Time
	svc    *internal.Services
	closer io.Closer
}

func newApp() *app {
	return &app{now: time.Now}
}

func (a *app) load(cmd *cobra.Command) error {
	if a.svc != nil {
		return nil
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return err
	}

	sink, closer, err := internal.OpenLogSink(cmd.ErrOrStderr(), logFileFor(cmd, cfg))
	if err != nil {
		return err
	}
	logger := internal.NewSlogLogger(sink, cfg.Log.Level).With("run", uuid.NewString())

	a.svc = internal.NewServices(cfg, logger, a.now)
	a.closer = closer
	return nil
}

// logFileFor keeps the monitor's own lines out of the logs it scans.
func logFileFor(cmd *cobra.Command, cfg *internal.Config) string {
	if cmd.Name() == "monitor" && cfg.Monitor.LogFile != "" {
		return cfg.Monitor.LogFile
	}
	return cfg.Log.File
}

func (a *app) services() *internal.Services {
	return a.svc
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
		a.closer = nil
	}
}
