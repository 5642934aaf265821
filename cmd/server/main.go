package main

import (
	"context"
	"database/sql"
	"dota-tracker/internal/config"
	"dota-tracker/internal/constants"
	fxmodules "dota-tracker/internal/fx"
	"dota-tracker/internal/server"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	trackerServer *server.TrackerServer,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	// the session cookie only travels with credentialed requests from the client origin
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.ClientURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           c.Handler(trackerServer.Handler()),
		ReadHeaderTimeout: constants.ShutdownTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Str("client_url", cfg.ClientURL).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
