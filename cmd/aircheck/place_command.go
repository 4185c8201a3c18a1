package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"aircheck/internal/config"
	"aircheck/internal/logging"
	"aircheck/internal/notify"
	"aircheck/internal/place"
	"aircheck/internal/store"
)

// newPlaceCommand places one file by hand, for recovering segments the
// daemon missed or operator-supplied recordings.
func newPlaceCommand(ctx *commandContext) *cobra.Command {
	var skipNotify bool

	cmd := &cobra.Command{
		Use:   "place <file>",
		Short: "Place a finalized segment file into the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve source path: %w", err)
			}
			if info, err := os.Stat(sourcePath); err != nil {
				return fmt.Errorf("stat source file: %w", err)
			} else if info.IsDir() {
				return fmt.Errorf("source path %q is a directory", sourcePath)
			}

			return ctx.withJournal(func(cfg *config.Config, journal *store.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				notifier := notify.NewService(cfg)
				if skipNotify {
					notifier = notify.Noop()
				}
				defer notifier.Close()

				engine := place.NewEngine(cfg, journal, logger, notifier, nil)
				result, err := engine.Place(cmd.Context(), sourcePath)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				switch result.Outcome {
				case place.OutcomeDuplicate:
					fmt.Fprintf(out, "Discarded duplicate; archive already holds %s\n", result.FinalPath)
				case place.OutcomeUnmatched:
					fmt.Fprintf(out, "Filename did not parse; routed to %s\n", result.FinalPath)
				case place.OutcomeMissingSource:
					fmt.Fprintln(out, "Source file vanished; nothing to place")
				default:
					fmt.Fprintf(out, "Placed %s\n", result.FinalPath)
					if !result.Notified && !skipNotify {
						fmt.Fprintln(out, "Warning: notification publish failed; see logs")
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipNotify, "no-notify", false, "Skip the broker notification")
	return cmd
}
