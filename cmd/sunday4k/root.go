package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "sunday4k",
	Short:        "Sunday4K email service",
	Long:         "Sunday4K renders templated emails from a variable catalog and delivers them through Resend.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}
