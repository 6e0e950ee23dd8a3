package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trego/provider/internal/config"
	"github.com/trego/provider/internal/logging"
	"github.com/trego/provider/internal/ws"
)

func newWatchCommand(configPath *string) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "watch",
		Args:  cobra.NoArgs,
		Short: "Stream job updates from a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg)
			if err != nil {
				return err
			}
			if url == "" {
				url = fmt.Sprintf("ws://localhost:%d/ws/jobs", cfg.HTTPPort)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			client := ws.NewClient(url, func(msg ws.JobUpdatedMessage) {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", msg.Action, msg.Job.ID, msg.Job.Status, msg.Job.Title)
			}, ws.ClientOptions{Logger: log})

			err = client.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "websocket URL (default ws://localhost:<http_port>/ws/jobs)")

	return cmd
}
