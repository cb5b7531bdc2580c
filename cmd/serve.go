package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/coverscan/internal/config"
	"github.com/lehigh-university-libraries/coverscan/internal/handlers"
	"github.com/lehigh-university-libraries/coverscan/internal/recognition"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the cover upload API",
		Long: `Starts the HTTP API that accepts cover photos and returns the recognized metadata.

Endpoints:
  POST /api/books/upload   multipart "image" (+ optional "language", default ru)
  GET  /api/books          processed covers, newest first
  GET  /api/books/{id}     one processed cover
  GET  /api/health         liveness
  GET  /uploads/<file>     stored images`,
		Example: `  # Start server on PORT from the environment (default 8000)
  coverscan serve

  # Start server on custom port
  coverscan serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.Server.Port = port
			}

			handler := handlers.New(cfg.Server, recognition.NewFromConfig(cfg))

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Coverscan API available", "addr", addr, "url", "http://localhost"+addr, "upload_dir", cfg.Server.UploadDir)
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

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}
