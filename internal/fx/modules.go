package fx

import (
	"database/sql"
	"dota-tracker/internal/api"
	"dota-tracker/internal/auth"
	"dota-tracker/internal/cache"
	"dota-tracker/internal/config"
	"dota-tracker/internal/database"
	"dota-tracker/internal/db"
	"dota-tracker/internal/logger"
	"dota-tracker/internal/observability"
	"dota-tracker/internal/repository"
	"dota-tracker/internal/server"
	"dota-tracker/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Provide(cache.New),
	fx.Invoke(observability.Register),
	// repos
	fx.Provide(
		fx.Annotate(repository.NewPlayerRepository, fx.As(new(service.ProfileStore))),
		fx.Annotate(repository.NewMatchRepository, fx.As(new(service.MatchStore))),
	),
	// api client
	fx.Provide(fx.Annotate(api.NewOpenDotaClient, fx.As(new(service.Upstream)))),
	// svc
	fx.Provide(fx.Annotate(service.NewPlayerService, fx.As(new(server.PlayerDirectory)))),
	fx.Provide(fx.Annotate(service.NewMatchService, fx.As(new(server.MatchLister)))),
	fx.Provide(fx.Annotate(service.NewMatchDetailService, fx.As(new(server.MatchDetailGetter)))),
	// auth
	fx.Provide(fx.Annotate(auth.NewOpenID, fx.As(new(server.Authenticator)))),
	fx.Provide(auth.NewSessions),
	// server
	fx.Provide(server.NewTrackerServer),
)
