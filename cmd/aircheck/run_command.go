package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"aircheck/internal/config"
	"aircheck/internal/daemon"
	"aircheck/internal/logging"
	"aircheck/internal/store"
)

// newRunCommand runs the full daemon in the foreground, same lifecycle as
// aircheckd.
func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the archiver daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runDaemon(cfg)
		},
	}
}

func runDaemon(cfg *config.Config) error {
	runCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	journal, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open segment journal: %w", err)
	}

	d, err := daemon.New(cfg, journal, logger)
	if err != nil {
		journal.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(runCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	err = d.Wait(runCtx)
	d.Stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
