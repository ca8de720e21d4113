package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Crocmagnon/ynab-card-notify/internal/app"
	"github.com/Crocmagnon/ynab-card-notify/internal/config"
	"github.com/Crocmagnon/ynab-card-notify/internal/logger"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(client *http.Client) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the notification endpoint locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, port, client)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port (defaults to $PORT)")

	return cmd
}

func serve(ctx context.Context, port string, client *http.Client) error {
	env, err := config.FromEnv()
	if err != nil {
		return err
	}

	if port == "" {
		port = env.Port
	}

	log := logger.NewFormat(env.LogFormat, os.Stdout)

	adapter, err := app.Build(ctx, env, log, client)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      app.Routes(adapter, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: env.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)

	go func() {
		log.Info().Str("port", port).Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}

		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}
