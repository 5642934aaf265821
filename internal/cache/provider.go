package cache

import (
	"context"
	"dota-tracker/internal/config"
	"strings"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const memoryScheme = "memory://"

// New selects the backend from REDIS_URL and ties its shutdown to the app.
func New(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (Cache, error) {
	if strings.HasPrefix(cfg.RedisURL, memoryScheme) {
		logger.Warn().Msg("using in-process memory cache; entries are not shared between instances")
		return NewMemoryCache(), nil
	}

	logger.Info().Msg("connecting to redis")
	client, err := NewRedisClient(context.Background(), cfg.RedisURL)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to redis")
		return nil, err
	}
	c := NewRedisCache(client)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("closing redis connection")
			return c.Close()
		},
	})

	logger.Info().Msg("redis connected")
	return c, nil
}
