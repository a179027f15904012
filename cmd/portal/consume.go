package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/civdef/volunteer-portal/internal/queue"
)

func consumeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Write workflow events from the broker to the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.RabbitURL == "" {
				return errors.New("RABBITMQ_URL is required")
			}
			ctx, stop := signalContext()
			defer stop()

			err := queue.NewConsumer(a.cfg.RabbitURL, a.log).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
