package main

import (
	"github.com/spf13/cobra"

	albumsapp "github.com/albums-service/internal/app/albums"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the MySQL schema for the albums store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := albumsapp.LoadConfig()
			if err != nil {
				return err
			}
			logger := albumsapp.NewLogger(cfg.LogLevel, cmd.OutOrStdout())
			if err := albumsapp.Migrate(cmd.Context(), cfg); err != nil {
				return err
			}
			logger.Info("MySQL schema is up to date")
			return nil
		},
	}
}
