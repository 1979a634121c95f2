package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/zepiy/stockmeta/internal/batch"
	"github.com/zepiy/stockmeta/internal/handlers"
	"github.com/zepiy/stockmeta/internal/metadata"
	"github.com/zepiy/stockmeta/internal/queue"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the Stockmeta HTTP API on the specified port.

Assets are uploaded into an in-memory queue, generated one at a time or as a
background batch, and exported as a ZIP archive or per-site CSV files.`,
		Example: `  # Start server on the configured port (default 8888)
  stockmeta serve

  # Start server on custom port
  stockmeta serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			client, err := metadata.NewClientFromConfig(cfg)
			if err != nil {
				return err
			}

			orch := batch.New(queue.New(), client)
			handler := handlers.New(cmd.Context(), cfg, orch)

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Stockmeta API available", "addr", addr, "url", "http://localhost"+addr, "provider", cfg.Provider, "model", cfg.Model)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from config)")

	return cmd
}
