package main

import (
	"log/slog"
	"net"

	"github.com/spf13/cobra"

	"github.com/sunday4k/sunday4k/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. Job workers run in the same process unless
APP_RUN_WORKERS is false, in which case jobs are only enqueued and a
separate "worker" process must consume them.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg, log, cfg.App.Workers)
		if err != nil {
			return err
		}

		opts := append(a.serverOptions(), server.OnListen(func(addr net.Addr) {
			a.log.InfoContext(ctx, "http server listening",
				slog.String("addr", addr.String()),
				slog.Bool("workers", a.manager != nil),
			)
		}))
		return server.Run(ctx, a.handler(), opts...)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
