package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aircheck/internal/config"
	"aircheck/internal/logging"
	"aircheck/internal/notify"
	"aircheck/internal/place"
	"aircheck/internal/store"
)

// newSweepCommand places every finalized segment sitting at the top of the
// archive directory, for catching up after daemon downtime.
func newSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Place all finalized segments waiting in the archive directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(cfg *config.Config, journal *store.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				notifier := notify.NewService(cfg)
				defer notifier.Close()

				engine := place.NewEngine(cfg, journal, logger, notifier, nil)
				watcher := place.NewWatcher(cfg, engine, logger)
				watcher.Sweep(cmd.Context())

				fmt.Fprintln(cmd.OutOrStdout(), "Sweep complete; see logs for per-file results")
				return nil
			})
		},
	}
}
