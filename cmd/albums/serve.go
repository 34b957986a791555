package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	albumsapp "github.com/albums-service/internal/app/albums"
)

func newServeCmd() *cobra.Command {
	var (
		port    string
		backend string
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the albums HTTP API",
		Example: `  # Serve on the configured port with the in-memory store
  albums serve

  # Serve from MySQL, creating the schema first
  MYSQL_DSN='user:pass@tcp(db:3306)/albums' albums serve --backend mysql --migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := albumsapp.LoadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			if backend != "" {
				cfg.RepoBackend = backend
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			if migrate && cfg.RepoBackend == albumsapp.BackendMySQL {
				if err := albumsapp.Migrate(cmd.Context(), cfg); err != nil {
					return err
				}
			}

			app, err := albumsapp.Wire(cfg, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			logger := app.Logger

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           app.Handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("Albums service listening",
					"addr", addr,
					"backend", cfg.RepoBackend,
					"photographer_url", cfg.PhotographerURL,
					"photo_url", cfg.PhotoURL,
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				logger.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("Server shutdown failed", "err", err)
					return err
				}
				logger.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides ALBUMS_PORT)")
	cmd.Flags().StringVar(&backend, "backend", "", "Album store: memory, mysql or bolt (overrides REPO_BACKEND)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Create the MySQL schema before serving")

	return cmd
}
