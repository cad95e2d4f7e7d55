package main

import (
	"github.com/spf13/cobra"

	"github.com/sunday4k/sunday4k/internal/server"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the job workers without the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg, log, true)
		if err != nil {
			return err
		}
		a.log.InfoContext(cmd.Context(), "job workers starting")
		return server.Run(cmd.Context(), nil, a.serverOptions()...)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
