package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/sunday4k/sunday4k/internal/config"
	"github.com/sunday4k/sunday4k/internal/repository"
	"github.com/sunday4k/sunday4k/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the default variable catalog, templates and quotes",
	Long: `Load the default variable catalog, system templates and starter
quotes into the database. Variables and templates are upserted, quotes are
only inserted when missing, so the command can run on every deploy.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, _ *config.Config, log *slog.Logger, pool *pgxpool.Pool) error {
			_, err := seed.Run(ctx, repository.New(pool), log)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
