package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/dailylog/internal/notify"
)

func newTestEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-email",
		Short: "Send a test notification with the configured SMTP settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			n, err := notify.FromConfig(cfg.Email, cfg.Notify.SendTimeout, cfg.Progress.Location)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Notify.SendTimeout)
			defer cancel()
			if err := n.SendTest(ctx); err != nil {
				return fmt.Errorf("sending test email: %w", err)
			}

			log.Info("test email sent", slog.String("to", cfg.Email.To))
			return nil
		},
	}
}
