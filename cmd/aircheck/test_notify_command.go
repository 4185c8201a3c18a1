package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aircheck/internal/notify"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Publish a test message to the configured broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.AMQP.Host) == "" {
				return fmt.Errorf("amqp host not configured; set [amqp] host in the config file or RABBITMQ_HOST")
			}
			notifier := notify.NewService(cfg)
			defer notifier.Close()
			if err := notifier.Test(cmd.Context()); err != nil {
				return fmt.Errorf("publish test message: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test message published to exchange %q\n", cfg.AMQP.Exchange)
			return nil
		},
	}
}
